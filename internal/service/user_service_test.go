package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leetnote-go-api/internal/repository"
)

type stubStorage struct {
	uploaded map[string][]byte
	removed  []string
	url      string
	err      error
}

func (s *stubStorage) Upload(ctx context.Context, publicID string, reader io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if s.uploaded == nil {
		s.uploaded = map[string][]byte{}
	}
	s.uploaded[publicID] = payload
	return s.url, nil
}

func (s *stubStorage) Remove(ctx context.Context, publicID string) error {
	s.removed = append(s.removed, publicID)
	return s.err
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	files := req.MultipartForm.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestUserServiceProfileLifecycle(t *testing.T) {
	db := setupServiceDB(t)
	c, _ := newTestCache(t)
	users := repository.NewUserRepository(db)
	storage := &stubStorage{url: "https://res.cloudinary.com/demo/user-1.png"}
	svc := NewUserService(users, storage, c, 1, zerolog.Nop())
	ctx := context.Background()

	user, err := svc.FindOrCreate(ctx, "uid-1", "ada@example.com")
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", profile.Email)
	require.Empty(t, profile.Username)

	profile, err = svc.UpdateUsername(ctx, user.ID, "  <b>ada</b>_l  ")
	require.NoError(t, err)
	require.Equal(t, "ada_l", profile.Username, "markup stripped and cache refreshed")

	profile, err = svc.UploadProfilePicture(ctx, user.ID, multipartFile(t, "me.png", pngHeader))
	require.NoError(t, err)
	require.Equal(t, storage.url, profile.ProfileURL)
	require.Contains(t, storage.uploaded, "user-1")

	profile, err = svc.ClearProfileURL(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, profile.ProfileURL)
	require.Equal(t, []string{"user-1"}, storage.removed)

	profile, err = svc.UpdateProfileURL(ctx, user.ID, "https://example.com/a.png")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/a.png", profile.ProfileURL)
}

func TestUserServiceRejectsBadUsernames(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewUserService(repository.NewUserRepository(db), nil, nil, 1, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.FindOrCreate(ctx, "uid-1", "a@example.com")
	require.NoError(t, err)
	second, err := svc.FindOrCreate(ctx, "uid-2", "b@example.com")
	require.NoError(t, err)

	_, err = svc.UpdateUsername(ctx, first.ID, "<script>x</script>")
	require.ErrorIs(t, err, ErrInvalidUsername)

	_, err = svc.UpdateUsername(ctx, first.ID, "taken")
	require.NoError(t, err)
	_, err = svc.UpdateUsername(ctx, second.ID, "taken")
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Profile(ctx, 999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceUploadValidation(t *testing.T) {
	db := setupServiceDB(t)
	users := repository.NewUserRepository(db)
	ctx := context.Background()
	user, err := users.FindOrCreate(ctx, "uid-1", "a@example.com")
	require.NoError(t, err)

	unconfigured := NewUserService(users, nil, nil, 1, zerolog.Nop())
	_, err = unconfigured.UploadProfilePicture(ctx, user.ID, multipartFile(t, "me.png", pngHeader))
	require.ErrorIs(t, err, ErrUploadUnavailable)

	svc := NewUserService(users, &stubStorage{url: "https://cdn/x.png"}, nil, 1, zerolog.Nop())

	_, err = svc.UploadProfilePicture(ctx, user.ID, multipartFile(t, "notes.txt", []byte("just some text")))
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	large := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2<<20)...)
	_, err = svc.UploadProfilePicture(ctx, user.ID, multipartFile(t, "big.png", large))
	require.ErrorIs(t, err, ErrUploadTooLarge)
}
