package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notificationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "message", "type", "is_read", "metadata", "created_at"}).
		AddRow(2, "缺陷分类模型重训完成", "success", false, "{}", time.Now()).
		AddRow(1, "数据导入完成", "info", true, "{}", time.Now().Add(-time.Hour))
}

func TestNotificationHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `notifications`").
		WillReturnRows(notificationRows())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewNotificationHandler()
	router.GET("/notifications", h.List)

	req := httptest.NewRequest("GET", "/notifications", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	assert.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "缺陷分类模型重训完成", first["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationHandler_List_BadLimit(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewNotificationHandler()
	router.GET("/notifications", h.List)

	req := httptest.NewRequest("GET", "/notifications?limit=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count.* FROM `notifications`").
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewNotificationHandler()
	router.GET("/notifications/unread-count", h.UnreadCount)

	req := httptest.NewRequest("GET", "/notifications/unread-count", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["count"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `notifications`").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message", "type", "is_read", "metadata", "created_at"}).
			AddRow(2, "msg", "info", false, "", time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `notifications`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewNotificationHandler()
	router.PUT("/notifications/:id/read", h.MarkRead)

	req := httptest.NewRequest("PUT", "/notifications/2/read", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "已标记为已读")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationHandler_MarkRead_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `notifications`").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewNotificationHandler()
	router.PUT("/notifications/:id/read", h.MarkRead)

	req := httptest.NewRequest("PUT", "/notifications/99/read", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
}

func TestNotificationHandler_Delete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `notifications`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message", "type", "is_read", "metadata", "created_at"}).
			AddRow(1, "msg", "info", true, "", time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `notifications`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewNotificationHandler()
	router.DELETE("/notifications/:id", h.Delete)

	req := httptest.NewRequest("DELETE", "/notifications/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "删除成功")
	require.NoError(t, mock.ExpectationsWereMet())
}
