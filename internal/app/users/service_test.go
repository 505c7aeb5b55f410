package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socloud/internal/apperr"
	"socloud/internal/auth"
	"socloud/internal/blob"
	"socloud/internal/media"
	"socloud/internal/models"
	"socloud/internal/store"
)

type fakeStore struct {
	mu         sync.Mutex
	nextID     int
	users      map[string]models.User
	deleted    []string
	failUpdate error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]models.User{}}
}

func (f *fakeStore) CreateUser(_ context.Context, u models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == strings.ToLower(strings.TrimSpace(u.Email)) {
			return models.User{}, store.ErrConstraint
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("u%d", f.nextID)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) UserByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) UserByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (f *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, u models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return models.User{}, f.failUpdate
	}
	if _, ok := f.users[u.ID]; !ok {
		return models.User{}, store.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// brokenStorage fails every call.
type brokenStorage struct{}

func (brokenStorage) Upload(context.Context, string, io.Reader, int64, string) error {
	return errors.New("bucket offline")
}

func (brokenStorage) ReadURL(context.Context, string, time.Duration) (string, error) {
	return "", errors.New("bucket offline")
}

func (brokenStorage) Delete(context.Context, string) error {
	return errors.New("bucket offline")
}

const secret = "users-test-secret-0123456789"

func newService(storage blob.Storage) (Service, *fakeStore) {
	st := newFakeStore()
	return New(st, media.NewManager(storage, time.Hour), auth.NewTokenManager(secret, time.Hour)), st
}

func picture(name string) *models.Upload {
	return &models.Upload{Filename: name, ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
}

func registration() models.Registration {
	return models.Registration{Email: "ada@example.com", Password: "Str0ng!Pass", FirstName: "Ada", LastName: "Lovelace"}
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	svc, st := newService(blob.NewMemoryStorage(""))

	session, err := svc.Register(context.Background(), registration(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	claims, err := auth.NewTokenManager(secret, time.Hour).Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, claims.UserID())
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, "ada@example.com", claims.Email)

	stored := st.users[session.UserID]
	assert.NotEqual(t, "Str0ng!Pass", stored.PasswordHash)
	assert.True(t, auth.VerifyPassword(stored.PasswordHash, "Str0ng!Pass"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, st := newService(blob.NewMemoryStorage(""))
	ctx := context.Background()

	_, err := svc.Register(ctx, registration(), nil)
	require.NoError(t, err)

	dup := registration()
	dup.Email = " ADA@example.com"
	_, err = svc.Register(ctx, dup, nil)
	assert.ErrorIs(t, err, apperr.ErrDuplicateCredential)
	assert.Len(t, st.users, 1)
}

func TestConcurrentRegistrationsWithSameEmail(t *testing.T) {
	svc, st := newService(blob.NewMemoryStorage(""))
	ctx := context.Background()

	const attempts = 8
	start := make(chan struct{})
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Register(ctx, registration(), nil)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	succeeded, duplicates := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperr.ErrDuplicateCredential):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, duplicates)
	assert.Len(t, st.users, 1)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService(blob.NewMemoryStorage(""))

	for _, reg := range []models.Registration{
		{Email: "", Password: "x"},
		{Email: "not-an-email", Password: "x"},
		{Email: "a@example.com", Password: ""},
	} {
		_, err := svc.Register(context.Background(), reg, nil)
		assert.ErrorIs(t, err, apperr.ErrValidation, "registration %+v", reg)
	}
}

func TestRegisterWithPicture(t *testing.T) {
	storage := blob.NewMemoryStorage("")
	svc, st := newService(storage)

	session, err := svc.Register(context.Background(), registration(), picture("me.png"))
	require.NoError(t, err)

	u := st.users[session.UserID]
	require.NotNil(t, u.Picture)
	assert.Equal(t, "users/"+u.ID+"/me.png", u.Picture.Path)
	assert.True(t, storage.Has(u.Picture.Path))

	claims, err := auth.NewTokenManager(secret, time.Hour).Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.Picture.URL, claims.PictureURL)
}

func TestRegisterUploadFailureKeepsRow(t *testing.T) {
	svc, st := newService(brokenStorage{})

	_, err := svc.Register(context.Background(), registration(), picture("me.png"))
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
	require.Len(t, st.users, 1)
	for _, u := range st.users {
		assert.Nil(t, u.Picture)
	}
}

func TestRegisterPatchFailureRemovesPicture(t *testing.T) {
	storage := blob.NewMemoryStorage("")
	svc, st := newService(storage)
	errDB := errors.New("db down")
	st.failUpdate = errDB

	_, err := svc.Register(context.Background(), registration(), picture("me.png"))
	assert.ErrorIs(t, err, errDB)
	assert.Empty(t, storage.Keys())
	require.Len(t, st.users, 1)
	for _, u := range st.users {
		assert.Nil(t, u.Picture)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newService(blob.NewMemoryStorage(""))
	ctx := context.Background()

	registered, err := svc.Register(ctx, registration(), nil)
	require.NoError(t, err)

	session, err := svc.Login(ctx, "ada@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, session.UserID)

	_, wrongPassword := svc.Login(ctx, "ada@example.com", "nope")
	_, unknownEmail := svc.Login(ctx, "bob@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, wrongPassword, apperr.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, apperr.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestSwitchRoleIsInvolution(t *testing.T) {
	svc, _ := newService(blob.NewMemoryStorage(""))
	ctx := context.Background()

	session, err := svc.Register(ctx, registration(), nil)
	require.NoError(t, err)

	view, err := svc.SwitchRole(ctx, session.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, view.Role)

	view, err = svc.SwitchRole(ctx, session.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, view.Role)

	_, err = svc.SwitchRole(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateMergesOnlySetFields(t *testing.T) {
	svc, st := newService(blob.NewMemoryStorage(""))
	ctx := context.Background()

	session, err := svc.Register(ctx, registration(), nil)
	require.NoError(t, err)
	before := st.users[session.UserID]

	view, err := svc.Update(ctx, session.UserID, models.UserPatch{FirstName: models.Some("Augusta")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", view.FirstName)
	assert.Equal(t, "Lovelace", view.LastName)
	assert.Equal(t, before.PasswordHash, st.users[session.UserID].PasswordHash)

	_, err = svc.Update(ctx, session.UserID, models.UserPatch{Password: models.Some("N3w!Pass")}, nil)
	require.NoError(t, err)
	_, err = svc.Login(ctx, "ada@example.com", "N3w!Pass")
	assert.NoError(t, err)

	_, err = svc.Update(ctx, "missing", models.UserPatch{}, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateReplacesPicture(t *testing.T) {
	storage := blob.NewMemoryStorage("")
	svc, st := newService(storage)
	ctx := context.Background()

	session, err := svc.Register(ctx, registration(), picture("old.png"))
	require.NoError(t, err)
	oldPath := st.users[session.UserID].Picture.Path

	view, err := svc.Update(ctx, session.UserID, models.UserPatch{}, picture("new.png"))
	require.NoError(t, err)

	newRef := st.users[session.UserID].Picture
	require.NotNil(t, newRef)
	assert.NotEqual(t, oldPath, newRef.Path)
	assert.Equal(t, newRef.URL, view.PictureURL)
	assert.False(t, storage.Has(oldPath))
	assert.True(t, storage.Has(newRef.Path))
}

func TestDeleteRemovesPictureThenRow(t *testing.T) {
	storage := blob.NewMemoryStorage("")
	svc, st := newService(storage)
	ctx := context.Background()

	session, err := svc.Register(ctx, registration(), picture("me.png"))
	require.NoError(t, err)

	view, err := svc.Delete(ctx, session.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", view.Email)
	assert.Empty(t, storage.Keys())
	assert.Equal(t, []string{session.UserID}, st.deleted)

	_, err = svc.Delete(ctx, session.UserID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteAbortsWhenPictureDeleteFails(t *testing.T) {
	st := newFakeStore()
	ctx := context.Background()
	u, err := st.CreateUser(ctx, models.User{Email: "ada@example.com", PasswordHash: "h", Role: models.RoleUser,
		Picture: &models.BlobRef{Path: "users/u1/me.png"}})
	require.NoError(t, err)

	svc := New(st, media.NewManager(brokenStorage{}, time.Hour), auth.NewTokenManager(secret, time.Hour))
	_, err = svc.Delete(ctx, u.ID)
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
	assert.Contains(t, st.users, u.ID)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, st := newService(blob.NewMemoryStorage(""))
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "Adm1n!Pass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "Adm1n!Pass"))
	require.Len(t, st.users, 1)
	for _, u := range st.users {
		assert.Equal(t, models.RoleAdmin, u.Role)
	}

	views, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "admin@example.com", views[0].Email)
}

func TestCanceledContext(t *testing.T) {
	svc, _ := newService(blob.NewMemoryStorage(""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Register(ctx, registration(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
