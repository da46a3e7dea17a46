package daemon_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindscribe/internal/api"
	"mindscribe/internal/app"
	"mindscribe/internal/records"
	"mindscribe/internal/services"
	"mindscribe/internal/testsupport"
)

type apiHarness struct {
	server      *httptest.Server
	transcriber *testsupport.StubTranscriber
	generator   *testsupport.StubGenerator
	token       string
}

func newHarness(t *testing.T, token string) *apiHarness {
	t.Helper()
	tr := &testsupport.StubTranscriber{Text: "T: Hi. C: I'm fine."}
	gen := &testsupport.StubGenerator{
		JSON:           `{"identificationInformation":"Rhonda Garcia Sanchez","reasonForSeekingTherapy":"Stress"}`,
		TranscriptJSON: `[{"time":"0:00","speaker":"Therapist","dialogue":"Hi."},{"time":"0:04","speaker":"Client","dialogue":"I'm fine."}]`,
		Text:           "Summary text.",
	}
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken(token))
	d := newDaemon(t, cfg, app.WithTranscriber(tr), app.WithGenerator(gen))
	srv := httptest.NewServer(d.Handler())
	t.Cleanup(srv.Close)
	return &apiHarness{server: srv, transcriber: tr, generator: gen, token: token}
}

func (h *apiHarness) do(t *testing.T, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, h.server.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	resp, err := h.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (h *apiHarness) doJSON(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return h.do(t, method, path, reader, "application/json")
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (h *apiHarness) upload(t *testing.T, clientID, name string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return h.do(t, http.MethodPost, "/api/clients/"+clientID+"/recordings", &buf, writer.FormDataContentType())
}

func TestAPIListClients(t *testing.T) {
	h := newHarness(t, "")

	resp := h.doJSON(t, http.MethodGet, "/api/clients", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	list := decode[api.ClientListResponse](t, resp)
	require.Len(t, list.Clients, 2)
	assert.Equal(t, "Garcia Sanchez", list.Clients[0].LastName)

	resp = h.doJSON(t, http.MethodGet, "/api/clients?search=PASANO", "")
	list = decode[api.ClientListResponse](t, resp)
	require.Len(t, list.Clients, 1)
	assert.Equal(t, "Tony", list.Clients[0].FirstName)
}

func TestAPICreateClientValidation(t *testing.T) {
	h := newHarness(t, "")

	resp := h.doJSON(t, http.MethodPost, "/api/clients", `{"firstName":"Ana"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decode[api.ErrorResponse](t, resp)
	require.NotEmpty(t, errResp.Fields)
	assert.Equal(t, "lastName", errResp.Fields[0].Field)

	resp = h.doJSON(t, http.MethodPost, "/api/clients", `{"firstName":"Ana","lastName":"Lopez","modalities":["CBT"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[api.Client](t, resp)
	assert.Equal(t, "AL", created.Initials)

	resp = h.doJSON(t, http.MethodGet, "/api/clients/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.doJSON(t, http.MethodPost, "/api/clients", `{"firstName":"Ana","unknown":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPISessionLifecycle(t *testing.T) {
	h := newHarness(t, "")

	resp := h.doJSON(t, http.MethodGet, "/api/clients/1/sessions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sessions := decode[api.SessionListResponse](t, resp)
	require.Len(t, sessions.Sessions, 1)

	resp = h.doJSON(t, http.MethodPatch, "/api/sessions/101", `{"title":"Updated title"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[records.Session](t, resp)
	assert.Equal(t, "Updated title", updated.Title)

	resp = h.doJSON(t, http.MethodDelete, "/api/sessions/101", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = h.doJSON(t, http.MethodGet, "/api/sessions/101", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decode[api.ErrorResponse](t, resp).Error, "101")

	resp = h.doJSON(t, http.MethodGet, "/api/clients/999/sessions", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIUploadRecordingCreatesSession(t *testing.T) {
	h := newHarness(t, "")

	resp := h.upload(t, "1", "session.mp3", []byte("fake-audio"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[api.RecordingResponse](t, resp)
	assert.Equal(t, "/clients/1/sessions/"+out.SessionID, out.Path)
	assert.Equal(t, "session.mp3", h.transcriber.Last().Name)

	resp = h.doJSON(t, http.MethodGet, "/api/sessions/"+out.SessionID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decode[records.Session](t, resp)
	assert.Equal(t, records.TranscribedSessionType, session.Type)
	require.Len(t, session.Transcript, 2)
	assert.Equal(t, records.PractitionerLabel, session.Transcript[0].Speaker)
	assert.Equal(t, "Rhonda", session.Transcript[1].Speaker)
	assert.Equal(t, "I'm fine.", session.Transcript[1].Dialogue)
	assert.Len(t, h.generator.Prompts(), 1)
}

func TestAPIUploadTranscriptionFailureReturnsBadGateway(t *testing.T) {
	h := newHarness(t, "")
	h.transcriber.Err = services.NewTranscriptionError(401, "Invalid API key", nil)

	resp := h.upload(t, "1", "session.mp3", []byte("fake-audio"))
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, decode[api.ErrorResponse](t, resp).Error, "Invalid API key")

	resp = h.doJSON(t, http.MethodGet, "/api/sessions", "")
	sessions := decode[api.SessionListResponse](t, resp)
	assert.Len(t, sessions.Sessions, 2)
}

func TestAPIUploadRequiresFile(t *testing.T) {
	h := newHarness(t, "")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("note", "no file here"))
	require.NoError(t, writer.Close())

	resp := h.do(t, http.MethodPost, "/api/clients/1/recordings", &buf, writer.FormDataContentType())
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, h.transcriber.Calls())
}

func TestAPINotesAndPrivateNote(t *testing.T) {
	h := newHarness(t, "")

	resp := h.doJSON(t, http.MethodGet, "/api/sessions/101/notes/intake", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	intake := decode[api.IntakeNoteResponse](t, resp)
	assert.False(t, intake.Degraded)
	assert.Equal(t, "Stress", intake.Note.ReasonForSeekingTherapy)

	resp = h.doJSON(t, http.MethodGet, "/api/sessions/101/notes/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Summary text.", decode[api.SummaryResponse](t, resp).Summary)

	resp = h.doJSON(t, http.MethodPut, "/api/sessions/101/private-note", `{"privateNote":"Check in next week."}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Check in next week.", decode[records.Session](t, resp).PrivateNote)

	resp = h.doJSON(t, http.MethodGet, "/api/sessions/nope/notes/intake", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	h := newHarness(t, "secret")

	resp := h.doJSON(t, http.MethodGet, "/api/clients", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, h.server.URL+"/api/clients", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer wrong")
	unauthorized, err := h.server.Client().Do(req)
	require.NoError(t, err)
	defer unauthorized.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, unauthorized.StatusCode)

	status, err := h.server.Client().Get(h.server.URL + "/api/status")
	require.NoError(t, err)
	defer status.Body.Close()
	require.Equal(t, http.StatusOK, status.StatusCode)
	payload := decode[api.DaemonStatus](t, status)
	assert.Equal(t, 2, payload.Clients)
	assert.Equal(t, "custom", payload.LLMProvider)
}

func TestAPIMethodNotAllowed(t *testing.T) {
	h := newHarness(t, "")
	resp := h.doJSON(t, http.MethodPut, "/api/clients", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
