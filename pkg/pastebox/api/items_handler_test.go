package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastebox/pastebox/pkg/pastebox"
	"github.com/pastebox/pastebox/pkg/pastebox/auth"
	memorycatalog "github.com/pastebox/pastebox/pkg/pastebox/catalog/memory"
	memorystorage "github.com/pastebox/pastebox/pkg/pastebox/storage/memory"
	"github.com/pastebox/pastebox/pkg/pastebox/thumbnail"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc, err := pastebox.New(
		pastebox.WithCatalog(memorycatalog.New()),
		pastebox.WithBlobStore(memorystorage.New()),
		pastebox.WithThumbnailStore(memorystorage.New()),
		pastebox.WithThumbnailer(thumbnail.New()),
	)
	require.NoError(t, err)

	handler := NewItemsHandler(svc, auth.NewMemoryStore(), testSecret)
	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return server
}

// loggedInClient logs in with the given password, which on a fresh server
// also sets it.
func loggedInClient(t *testing.T, server *httptest.Server, password string) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.PostForm(server.URL+"/login", url.Values{"password": {password}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return client
}

func uploadFile(t *testing.T, client *http.Client, serverURL, filename string, data []byte) pastebox.Item {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := client.Post(serverURL+"/items", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var item pastebox.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	return item
}

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for x := 0; x < 320; x++ {
		for y := 0; y < 240; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoginFirstTimeSetsPassword(t *testing.T) {
	server := newTestServer(t)

	// First login establishes the password.
	client := loggedInClient(t, server, "initial-password")

	// The session works.
	resp, err := client.Get(server.URL + "/items")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A different password is now rejected.
	plain := &http.Client{}
	resp, err = plain.PostForm(server.URL+"/login", url.Values{"password": {"guess"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The established password still logs in.
	resp, err = plain.PostForm(server.URL+"/login", url.Values{"password": {"initial-password"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginJSONBody(t *testing.T) {
	server := newTestServer(t)

	body := strings.NewReader(`{"password": "from-json"}`)
	resp, err := http.Post(server.URL+"/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Cookies())
}

func TestLoginMissingPassword(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.PostForm(server.URL+"/login", url.Values{})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	server := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/items"},
		{http.MethodGet, "/items/1"},
		{http.MethodPost, "/items"},
		{http.MethodDelete, "/items/1"},
		{http.MethodDelete, "/items"},
	} {
		req, err := http.NewRequest(route.method, server.URL+route.path, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	server := newTestServer(t)
	client := loggedInClient(t, server, "pw")

	resp, err := client.Post(server.URL+"/logout", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(server.URL + "/items")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadFile(t *testing.T) {
	server := newTestServer(t)
	client := loggedInClient(t, server, "pw")

	item := uploadFile(t, client, server.URL, "notes.txt", []byte("file body\n"))

	assert.NotZero(t, item.ID)
	assert.Equal(t, "notes.txt", item.DisplayName)
	assert.Equal(t, "file body\n", item.InlineContent)
}

func TestUploadTextPaste(t *testing.T) {
	server := newTestServer(t)
	client := loggedInClient(t, server, "pw")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", "pasted snippet"))
	require.NoError(t, mw.Close())

	resp, err := client.Post(server.URL+"/items", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var item pastebox.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.Equal(t, pastebox.TextPasteDisplayName, item.DisplayName)
	assert.Equal(t, "pasted snippet", item.InlineContent)
}

func TestUploadEmptyForm(t *testing.T) {
	server := newTestServer(t)
	client := loggedInClient(t, server, "pw")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	resp, err := client.Post(server.URL+"/items", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadImageGetsThumbnail(t *testing.T) {
	server := newTestServer(t)
	client := loggedInClient(t, server, "pw")

	item := uploadFile(t, client, server.URL, "pic.png", testPNG(t))
	require.NotEmpty(t, item.ThumbnailName)

	resp, err := client.Get(server.URL + "/thumbnails/" + item.ThumbnailName)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	thumb, _, err := image.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 150, thumb.Bounds().Dx())
	assert.Equal(t, 150, thumb.Bounds().Dy())
}

func TestThumbnailInvalidName(t *testing.T) {
	server := newTestServer(t)
	client := loggedInClient(t, server, "pw")

	resp, err := client.Get(server.URL + "/thumbnails/not-a-thumbnail.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = client.Get(server.URL + "/thumbnails/thumb_missing.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetItem(t *testing.T) {
	server := newTestServer(t)
	client := loggedInClient(t, server, "pw")

	item := uploadFile(t, client, server.URL, "a.txt", []byte("x"))

	resp, err := client.Get(fmt.Sprintf("%s/items/%d", server.URL, item.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got pastebox.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, item.ID, got.ID)

	resp, err = client.Get(fmt.Sprintf("%s/items/%d", server.URL, item.ID+100))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = client.Get(server.URL + "/items/not-a-number")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownloadItem(t *testing.T) {
	server := newTestServer(t)
	client := loggedInClient(t, server, "pw")

	content := []byte("downloadable body")
	item := uploadFile(t, client, server.URL, "report.txt", content)

	resp, err := client.Get(fmt.Sprintf("%s/items/%d/download", server.URL, item.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, resp.Header.Get("Content-Disposition"), `attachment`)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "report.txt")

	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestListPagination(t *testing.T) {
	server := newTestServer(t)
	client := loggedInClient(t, server, "pw")

	for i := 0; i < 12; i++ {
		uploadFile(t, client, server.URL, fmt.Sprintf("f%d.txt", i), []byte("x"))
	}

	var page pastebox.Page

	resp, err := client.Get(server.URL + "/items?page=1")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	resp.Body.Close()
	assert.Len(t, page.Items, 10)
	assert.Equal(t, int64(12), page.TotalCount)
	assert.True(t, page.HasNextPage)

	resp, err = client.Get(server.URL + "/items?page=2")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	resp.Body.Close()
	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasNextPage)

	// Out-of-range and malformed page values degrade to page one.
	for _, q := range []string{"?page=0", "?page=abc", ""} {
		resp, err = client.Get(server.URL + "/items" + q)
		require.NoError(t, err)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
		resp.Body.Close()
		assert.Equal(t, 1, page.CurrentPage)
	}
}

func TestDeleteItem(t *testing.T) {
	server := newTestServer(t)
	client := loggedInClient(t, server, "pw")

	item := uploadFile(t, client, server.URL, "gone.txt", []byte("x"))
	target := fmt.Sprintf("%s/items/%d", server.URL, item.ID)

	req, err := http.NewRequest(http.MethodDelete, target, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Second delete reports the record is gone.
	req, err = http.NewRequest(http.MethodDelete, target, nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteAll(t *testing.T) {
	server := newTestServer(t)
	client := loggedInClient(t, server, "pw")

	for i := 0; i < 3; i++ {
		uploadFile(t, client, server.URL, fmt.Sprintf("f%d.txt", i), []byte("x"))
	}

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/items", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page pastebox.Page
	resp, err = client.Get(server.URL + "/items")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	resp.Body.Close()
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.TotalCount)
}

func TestAdminSetPassword(t *testing.T) {
	server := newTestServer(t)

	// Establish a password, then replace it through the admin route.
	loggedInClient(t, server, "old-password")

	resp, err := http.PostForm(server.URL+"/admin/password", url.Values{"password": {"new-password"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.PostForm(server.URL+"/login", url.Values{"password": {"old-password"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.PostForm(server.URL+"/login", url.Values{"password": {"new-password"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
