package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"linklens/internal/domain/credential"
)

type memCredentialRepo struct {
	mu        sync.Mutex
	byEmail      map[string]credential.Credential
	bySubject    map[string]credential.Credential
	createErr    error
	onCreateFail func()
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{
		byEmail:   map[string]credential.Credential{},
		bySubject: map[string]credential.Credential{},
	}
}

func (r *memCredentialRepo) Create(ctx context.Context, c credential.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		if r.onCreateFail != nil {
			r.onCreateFail()
		}
		return r.createErr
	}
	if _, ok := r.byEmail[c.Email]; ok {
		return errors.New("duplicate email")
	}
	r.byEmail[c.Email] = c
	r.bySubject[c.SubjectID] = c
	return nil
}

func (r *memCredentialRepo) GetByEmail(ctx context.Context, email string) (credential.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byEmail[email]
	if !ok {
		return credential.Credential{}, credential.ErrNotFound
	}
	return c, nil
}

func (r *memCredentialRepo) GetBySubject(ctx context.Context, subjectID string) (credential.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.bySubject[subjectID]
	if !ok {
		return credential.Credential{}, credential.ErrNotFound
	}
	return c, nil
}

func (r *memCredentialRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func TestRegisterNormalizesEmailAndHashesPassword(t *testing.T) {
	repo := newMemCredentialRepo()
	svc := NewService(repo)

	c, err := svc.Register(context.Background(), RegisterInput{
		Email:     "  Jane.Doe@Example.COM ",
		Password:  "hunter2hunter2",
		FirstName: " Jane ",
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if c.Email != "jane.doe@example.com" {
		t.Fatalf("expected normalized email, got %q", c.Email)
	}
	if !strings.HasPrefix(c.SubjectID, "local-") {
		t.Fatalf("expected local- subject, got %q", c.SubjectID)
	}
	if c.FirstName != "Jane" || c.LastName != "Doe" {
		t.Fatalf("expected trimmed hints, got %+v", c)
	}
	if c.PasswordHash != "" {
		t.Fatal("password hash leaked out of the service")
	}

	stored := repo.byEmail["jane.doe@example.com"]
	if stored.PasswordHash == "" || stored.PasswordHash == "hunter2hunter2" {
		t.Fatal("expected stored bcrypt hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	svc := NewService(newMemCredentialRepo())

	cases := []RegisterInput{
		{Email: "", Password: "hunter2hunter2"},
		{Email: "   ", Password: "hunter2hunter2"},
		{Email: "a@b.c", Password: "short"},
		{Email: "a@b.c", Password: "        "},
	}
	for _, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemCredentialRepo()
	svc := NewService(repo)

	in := RegisterInput{Email: "a@b.c", Password: "hunter2hunter2"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestRegisterRaceReportsEmailTaken(t *testing.T) {
	repo := newMemCredentialRepo()
	svc := NewService(repo)

	// simulate losing the insert race: the precheck saw no row, the insert
	// failed, and by re-check time the winner's row exists
	repo.createErr = errors.New("unique violation")
	repo.onCreateFail = func() {
		repo.byEmail["a@b.c"] = credential.Credential{Email: "a@b.c"}
	}

	_, err := svc.Register(context.Background(), RegisterInput{Email: "A@b.c", Password: "hunter2hunter2"})
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newMemCredentialRepo()
	svc := NewService(repo)

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "hunter2hunter2"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	c, err := svc.Login(context.Background(), LoginInput{Email: "A@B.C", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.Email != "a@b.c" || c.PasswordHash != "" {
		t.Fatalf("unexpected credential: %+v", c)
	}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "a@b.c", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "nobody@b.c", Password: "hunter2hunter2"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
