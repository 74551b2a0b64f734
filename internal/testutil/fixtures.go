package testutil

import (
	"context"
	"testing"
	"time"

	achievementstore "github.com/courseloft/courseloft/internal/app/store/achievements"
	domainstore "github.com/courseloft/courseloft/internal/app/store/domains"
	enrollmentstore "github.com/courseloft/courseloft/internal/app/store/enrollments"
	lessonstore "github.com/courseloft/courseloft/internal/app/store/lessons"
	pagestore "github.com/courseloft/courseloft/internal/app/store/pages"
	programstore "github.com/courseloft/courseloft/internal/app/store/programs"
	tenantstore "github.com/courseloft/courseloft/internal/app/store/tenants"
	userstore "github.com/courseloft/courseloft/internal/app/store/users"
	videoprogressstore "github.com/courseloft/courseloft/internal/app/store/videoprogress"
	videostore "github.com/courseloft/courseloft/internal/app/store/videos"
	"github.com/courseloft/courseloft/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures creates test records through the real stores so stamped fields
// and invariants match production behavior.
type Fixtures struct {
	t *testing.T

	Tenants      *tenantstore.Store
	Domains      *domainstore.Store
	Users        *userstore.Store
	Pages        *pagestore.Store
	Programs     *programstore.Store
	Videos       *videostore.Store
	Lessons      *lessonstore.Store
	Enrollments  *enrollmentstore.Store
	Progress     *videoprogressstore.Store
	Achievements *achievementstore.Store
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{
		t:            t,
		Tenants:      tenantstore.New(db),
		Domains:      domainstore.New(db),
		Users:        userstore.New(db),
		Pages:        pagestore.New(db),
		Programs:     programstore.New(db),
		Videos:       videostore.New(db),
		Lessons:      lessonstore.New(db),
		Enrollments:  enrollmentstore.New(db),
		Progress:     videoprogressstore.New(db),
		Achievements: achievementstore.New(db),
	}
}

// CreateTenant creates an active tenant.
func (f *Fixtures) CreateTenant(ctx context.Context, name, slug string) models.Tenant {
	f.t.Helper()
	t, err := f.Tenants.Create(ctx, models.Tenant{Name: name, Slug: slug})
	if err != nil {
		f.t.Fatalf("CreateTenant(%q): %v", slug, err)
	}
	return t
}

// CreateDomain creates an active domain mapping for a tenant.
func (f *Fixtures) CreateDomain(ctx context.Context, tenantID primitive.ObjectID, hostname string) models.Domain {
	f.t.Helper()
	d, err := f.Domains.Create(ctx, models.Domain{
		Domain:   hostname,
		TenantID: tenantID,
		IsActive: true,
	})
	if err != nil {
		f.t.Fatalf("CreateDomain(%q): %v", hostname, err)
	}
	return d
}

// CreateUser creates an active user who is a member of the given tenant.
func (f *Fixtures) CreateUser(ctx context.Context, tenantID primitive.ObjectID, name, email string) models.User {
	f.t.Helper()
	u, err := f.Users.Create(ctx, models.User{
		FullName: name,
		Email:    email,
		Tenants: []models.TenantMembership{
			{TenantID: tenantID, Roles: []string{"tenant-viewer"}},
		},
	})
	if err != nil {
		f.t.Fatalf("CreateUser(%q): %v", email, err)
	}
	return u
}

// CreateProgram creates an active program.
func (f *Fixtures) CreateProgram(ctx context.Context, tenantID primitive.ObjectID, title string, lessonCount int) models.Program {
	f.t.Helper()
	p, err := f.Programs.Create(ctx, models.Program{
		TenantID:    tenantID,
		Title:       title,
		AccessLevel: "free",
		LessonCount: lessonCount,
	})
	if err != nil {
		f.t.Fatalf("CreateProgram(%q): %v", title, err)
	}
	return p
}

// CreateVideo creates an active video.
func (f *Fixtures) CreateVideo(ctx context.Context, tenantID primitive.ObjectID, title string) models.Video {
	f.t.Helper()
	v, err := f.Videos.Create(ctx, models.Video{
		TenantID:        tenantID,
		Title:           title,
		DurationSeconds: 600,
	})
	if err != nil {
		f.t.Fatalf("CreateVideo(%q): %v", title, err)
	}
	return v
}

// CreateLesson creates an upcoming live lesson.
func (f *Fixtures) CreateLesson(ctx context.Context, tenantID primitive.ObjectID, title string, startsAt time.Time) models.Lesson {
	f.t.Helper()
	l, err := f.Lessons.Create(ctx, models.Lesson{
		TenantID:        tenantID,
		Title:           title,
		StartsAt:        startsAt,
		DurationMinutes: 60,
		AccessLevel:     "free",
	})
	if err != nil {
		f.t.Fatalf("CreateLesson(%q): %v", title, err)
	}
	return l
}

// CreateEnrollment enrolls a user in a program.
func (f *Fixtures) CreateEnrollment(ctx context.Context, tenantID, userID, programID primitive.ObjectID) models.Enrollment {
	f.t.Helper()
	e, err := f.Enrollments.Create(ctx, models.Enrollment{
		TenantID:  tenantID,
		UserID:    userID,
		ProgramID: programID,
	})
	if err != nil {
		f.t.Fatalf("CreateEnrollment: %v", err)
	}
	return e
}
