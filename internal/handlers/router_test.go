package handlers

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/assignment-service/internal/bulkimport"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"unknown token", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			ts.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestFirstSignInIsPending(t *testing.T) {
	ts := newTestServer(t)
	token := ts.issueToken("newbie", casdoorsdk.User{Id: "newbie", DisplayName: "New Person", Email: "new@example.com"})

	w := ts.do(t, http.MethodGet, "/api/v1/me", token, nil)
	jsonStatus(t, w, http.StatusOK)
	var me services.UserSummary
	decode(t, w, &me)
	assert.Equal(t, "New Person", me.FullName)
	assert.Equal(t, string(models.RoleStudent), me.Role)
	assert.False(t, me.Verified)

	w = ts.do(t, http.MethodGet, "/api/v1/assignments", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	stored, err := ts.repo.User().GetByID(context.Background(), "newbie")
	require.NoError(t, err)
	assert.False(t, stored.Verified)
}

func TestAdminUserManagement(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.addUser(t, "admin", models.RoleAdmin, true)
	inst := ts.addUser(t, "inst", models.RoleInstructor, true)
	ts.addUser(t, "pending", models.RoleStudent, false)

	w := ts.do(t, http.MethodGet, "/api/v1/admin/users", admin, nil)
	jsonStatus(t, w, http.StatusOK)
	var overview services.UserOverviewResponse
	decode(t, w, &overview)
	require.Len(t, overview.Pending, 1)
	assert.Equal(t, "pending", overview.Pending[0].ID)
	assert.Len(t, overview.Instructors, 1)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/users", inst, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/admin/users/pending/approve", admin, nil)
	jsonStatus(t, w, http.StatusOK)
	user, err := ts.repo.User().GetByID(context.Background(), "pending")
	require.NoError(t, err)
	assert.True(t, user.Verified)
	assert.Len(t, ts.publisher.EventsOfType(events.EventUserApproved), 1)

	w = ts.do(t, http.MethodPost, "/api/v1/admin/users/pending/reject", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "only pending users can be rejected")

	w = ts.do(t, http.MethodDelete, "/api/v1/admin/users/admin", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/instructors", inst, nil)
	jsonStatus(t, w, http.StatusOK)
	var choices []services.InstructorChoice
	decode(t, w, &choices)
	assert.Len(t, choices, 2)
}

func TestBulkImportToQuizFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.addUser(t, "admin", models.RoleAdmin, true)
	inst := ts.addUser(t, "inst", models.RoleInstructor, true)
	stud := ts.addUser(t, "stud", models.RoleStudent, true)

	w := ts.do(t, http.MethodPut, "/api/v1/bulk-import/me/draft", inst, bulkText(`Capital of France?
2

What is 2+2?
3`))
	jsonStatus(t, w, http.StatusOK)

	w = ts.do(t, http.MethodPost, "/api/v1/bulk-import/me/preview", inst, nil)
	jsonStatus(t, w, http.StatusOK)
	var preview services.BulkImportResponse
	decode(t, w, &preview)
	require.Len(t, preview.ParsedQuestions, 2)
	assert.True(t, preview.CanConfirm)
	assert.True(t, preview.IsPreviewing)

	w = ts.do(t, http.MethodPost, "/api/v1/bulk-import/me/confirm", inst, nil)
	jsonStatus(t, w, http.StatusOK)
	var confirmed services.BulkImportResponse
	decode(t, w, &confirmed)
	assert.Equal(t, 2, confirmed.Imported)
	assert.Empty(t, confirmed.ParsedQuestions)
	assert.Empty(t, confirmed.DraftText)

	w = ts.do(t, http.MethodGet, "/api/v1/drafts/me", inst, nil)
	jsonStatus(t, w, http.StatusOK)
	var draft models.AssignmentDraft
	decode(t, w, &draft)
	require.Len(t, draft.Questions, 2)
	assert.Equal(t, "Capital of France?", draft.Questions[0].Text)
	assert.Equal(t, 2, draft.Questions[1].CorrectAnswer)

	w = ts.do(t, http.MethodPut, "/api/v1/drafts/me", inst, map[string]string{"title": "Warm-up"})
	jsonStatus(t, w, http.StatusOK)

	w = ts.do(t, http.MethodPost, "/api/v1/drafts/me/submit", inst, nil)
	jsonStatus(t, w, http.StatusCreated)
	var created services.AssignmentResponse
	decode(t, w, &created)
	assert.Equal(t, "Warm-up", created.Title)
	require.Len(t, created.Questions, 2)

	toggle := fmt.Sprintf("/api/v1/assignments/%d/students/stud/toggle", created.ID)
	w = ts.do(t, http.MethodPost, toggle, inst, nil)
	jsonStatus(t, w, http.StatusOK)
	var entry services.RosterEntry
	decode(t, w, &entry)
	assert.True(t, entry.Assigned)

	quizPath := fmt.Sprintf("/api/v1/quizzes/%d", created.ID)
	w = ts.do(t, http.MethodGet, quizPath, stud, nil)
	jsonStatus(t, w, http.StatusOK)
	assert.NotContains(t, w.Body.String(), "correct_answer")

	w = ts.do(t, http.MethodPost, quizPath+"/submit", stud, map[string][]int{"answers": {1, 2}})
	jsonStatus(t, w, http.StatusCreated)
	var result services.QuizResult
	decode(t, w, &result)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 100, result.Percentage)

	w = ts.do(t, http.MethodPost, quizPath+"/submit", stud, map[string][]int{"answers": {1, 2}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/analytics/grades", admin, nil)
	jsonStatus(t, w, http.StatusOK)
	var grades []services.GradeRow
	decode(t, w, &grades)
	require.Len(t, grades, 1)
	assert.Equal(t, "2/2", grades[0].ScoreLabel)
	assert.Equal(t, "100%", grades[0].PercentageLabel)

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/analytics/assignments/%d", created.ID), inst, nil)
	jsonStatus(t, w, http.StatusOK)

	w = ts.do(t, http.MethodGet, "/api/v1/analytics/grades/export", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, w.Body.Bytes())

	w = ts.do(t, http.MethodGet, "/api/v1/analytics/grades/export", inst, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// bulkText builds the bulk text body.
func bulkText(text string) services.BulkTextRequest {
	return services.BulkTextRequest{Text: text}
}

func TestBulkImportErrors(t *testing.T) {
	ts := newTestServer(t)
	inst := ts.addUser(t, "inst", models.RoleInstructor, true)
	stud := ts.addUser(t, "stud", models.RoleStudent, true)

	w := ts.do(t, http.MethodPost, "/api/v1/bulk-import/me/confirm", inst, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	ts.do(t, http.MethodPut, "/api/v1/bulk-import/me/draft", inst, bulkText("Pick one\n7"))
	w = ts.do(t, http.MethodPost, "/api/v1/bulk-import/me/preview", inst, nil)
	jsonStatus(t, w, http.StatusUnprocessableEntity)
	var failed struct {
		Message string                      `json:"message"`
		Details services.BulkImportResponse `json:"details"`
	}
	decode(t, w, &failed)
	assert.Equal(t, `Invalid answer number "7" for question "Pick one". Must be 1-5.`, failed.Message)
	assert.Equal(t, failed.Message, failed.Details.ErrorMessage)
	assert.False(t, failed.Details.IsPreviewing)

	// The error is kept in the session.
	w = ts.do(t, http.MethodGet, "/api/v1/bulk-import/me", inst, nil)
	jsonStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "Invalid answer number")

	w = ts.do(t, http.MethodPost, "/api/v1/bulk-import/parse", inst, bulkText("only one line"))
	jsonStatus(t, w, http.StatusUnprocessableEntity)
	var empty ErrorResponse
	decode(t, w, &empty)
	assert.Equal(t, bulkimport.EmptyResultMessage, empty.Message)

	w = ts.do(t, http.MethodPost, "/api/v1/bulk-import/parse", stud, bulkText("Q\n1"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDraftErrors(t *testing.T) {
	ts := newTestServer(t)
	inst := ts.addUser(t, "inst", models.RoleInstructor, true)

	w := ts.do(t, http.MethodPost, "/api/v1/drafts/me/submit", inst, nil)
	jsonStatus(t, w, http.StatusBadRequest)
	var resp struct {
		Message string                     `json:"message"`
		Details validator.ValidationErrors `json:"details"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Details)
	assert.Equal(t, "title", resp.Details[0].Field)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"bad index", http.MethodPut, "/api/v1/drafts/me/questions/abc", map[string]string{}, http.StatusBadRequest},
		{"index out of range", http.MethodPut, "/api/v1/drafts/me/questions/5", map[string]string{"text": "x"}, http.StatusBadRequest},
		{"option out of range", http.MethodPut, "/api/v1/drafts/me/questions/0/options/9", map[string]string{"value": "x"}, http.StatusBadRequest},
		{"last question", http.MethodDelete, "/api/v1/drafts/me/questions/0", nil, http.StatusUnprocessableEntity},
		{"malformed body", http.MethodPut, "/api/v1/drafts/me", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, tt.method, tt.path, inst, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w = ts.do(t, http.MethodPost, "/api/v1/drafts/me/questions", inst, nil)
	jsonStatus(t, w, http.StatusCreated)
	var draft models.AssignmentDraft
	decode(t, w, &draft)
	assert.Len(t, draft.Questions, 2)
}

func TestUploadAttachmentEndpoint(t *testing.T) {
	ts := newTestServer(t)
	inst := ts.addUser(t, "inst", models.RoleInstructor, true)
	stud := ts.addUser(t, "stud", models.RoleStudent, true)

	upload := func(token, contentType string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="syllabus.pdf"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments/attachments", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		return w
	}

	w := upload(inst, "application/pdf")
	jsonStatus(t, w, http.StatusCreated)
	var resp services.AttachmentResponse
	decode(t, w, &resp)
	assert.True(t, strings.HasPrefix(resp.URL, "http://files.test/"))
	assert.True(t, strings.HasSuffix(resp.ObjectName, ".pdf"))
	_, stored := ts.files.Get(resp.ObjectName)
	assert.True(t, stored)

	w = upload(inst, "application/x-msdownload")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(stud, "application/pdf")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/assignments/attachments", inst, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentAccess(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.addUser(t, "owner", models.RoleInstructor, true)
	other := ts.addUser(t, "other", models.RoleInstructor, true)
	stud := ts.addUser(t, "stud", models.RoleStudent, true)

	ts.do(t, http.MethodPut, "/api/v1/drafts/me/questions/0", owner, map[string]string{"text": "Q1"})
	for i := 0; i < models.QuestionOptionCount; i++ {
		ts.do(t, http.MethodPut, fmt.Sprintf("/api/v1/drafts/me/questions/0/options/%d", i), owner, map[string]string{"value": fmt.Sprint("opt", i)})
	}
	ts.do(t, http.MethodPut, "/api/v1/drafts/me", owner, map[string]string{"title": "Mine"})
	w := ts.do(t, http.MethodPost, "/api/v1/drafts/me/submit", owner, nil)
	jsonStatus(t, w, http.StatusCreated)
	var created services.AssignmentResponse
	decode(t, w, &created)
	path := fmt.Sprintf("/api/v1/assignments/%d", created.ID)

	w = ts.do(t, http.MethodGet, path, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/assignments", stud, nil)
	jsonStatus(t, w, http.StatusOK)
	assert.JSONEq(t, "[]", w.Body.String())

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/quizzes/%d", created.ID), stud, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/assignments/0", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodDelete, path, owner, nil)
	jsonStatus(t, w, http.StatusOK)

	w = ts.do(t, http.MethodGet, path, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	jsonStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "healthy")

	ts.repo.FailOn["Ping"] = fmt.Errorf("connection refused")
	w = ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{endpoint="/health",method="GET",status="200"} 1`)
}
