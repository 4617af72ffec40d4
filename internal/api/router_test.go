package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"announcements/config"
	"announcements/internal/middleware"
	"announcements/internal/model"
	"announcements/internal/permission"
	"announcements/internal/repository/inmem"
	"announcements/internal/service"
	"announcements/pkg/logger"
)

const testSecret = "test-secret"

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, kind model.NotificationKind, sender *model.User, a *model.Announcement, recipientIDs []int64) error {
	return nil
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type systemStatusStub struct{}

func (systemStatusStub) GetSystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	return &model.SystemStatus{TotalAnnouncements: 1, OpenAnnouncements: 1, TotalConfirmations: 4, ConfirmedCount: 1}, nil
}

// newTestServer 空间10：1为创建者，2为普通成员，3不在空间内，4为宿主管理员
func newTestServer(t *testing.T) (http.Handler, *inmem.DB) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := inmem.Open()
	for id, name := range map[int64]string{1: "alice", 2: "bob", 3: "carol", 4: "root"} {
		db.AddUser(model.User{ID: id, Username: name, Status: model.UserStatusEnabled})
	}
	db.AddUser(model.User{ID: 9, Username: "banned", Status: model.UserStatusDisabled})
	db.AddSpace(model.Space{ID: 10, Name: "Staff", CreatedBy: 1})
	db.Join(10, 2, model.GroupMember)
	db.SetSystemAdmin(4, true)

	log := logger.NewNop()
	users := inmem.NewUserRepository(db)
	permissions := permission.NewManager(inmem.NewPermissionStore(db))
	settings := service.NewSettingService(inmem.NewSettingRepository(db), client, log)
	announcements := service.NewAnnouncementService(
		inmem.NewStore(db),
		inmem.NewSpaceRepository(db),
		users,
		permissions,
		noopNotifier{},
		service.NewSearchService(client, log),
		settings,
		client,
		log,
	)

	engine := NewEngine(&config.Config{JWT: config.JWTConfig{Secret: testSecret}}, log, Services{
		Announcements: announcements,
		Settings:      settings,
		System:        service.NewSystemService(systemStatusStub{}, client, log),
		Users:         users,
		Permissions:   permissions,
	})
	return engine, db
}

func token(t *testing.T, uid int64) string {
	claims := middleware.Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, h http.Handler, method, path string, uid int64, body interface{}) envelope {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if uid > 0 {
		req.Header.Set("Authorization", "Bearer "+token(t, uid))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func createAnnouncement(t *testing.T, h http.Handler, message string) model.Announcement {
	resp := do(t, h, http.MethodPost, "/api/v1/spaces/10/announcements", 1, map[string]string{"message": message})
	require.Equal(t, 200, resp.Code, resp.Msg)
	var a model.Announcement
	require.NoError(t, json.Unmarshal(resp.Data, &a))
	return a
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthentication(t *testing.T) {
	h, _ := newTestServer(t)

	assert.Equal(t, 401, do(t, h, http.MethodGet, "/api/v1/spaces/10/announcements", 0, nil).Code)
	assert.Equal(t, 401, do(t, h, http.MethodGet, "/api/v1/spaces/10/announcements", 99, nil).Code)
	assert.Equal(t, 403, do(t, h, http.MethodGet, "/api/v1/spaces/10/announcements", 9, nil).Code)

	// 其他密钥签发的Token无效
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{UID: 1}).SignedString([]byte("other"))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces/10/announcements", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 401, resp.Code)
}

func TestAnnouncementLifecycle(t *testing.T) {
	h, _ := newTestServer(t)
	a := createAnnouncement(t, h, "Office closed on Friday")
	base := fmt.Sprintf("/api/v1/announcements/%d", a.ID)

	// 普通成员不能编辑
	assert.Equal(t, 403, do(t, h, http.MethodPost, "/api/v1/spaces/10/announcements", 2, map[string]string{"message": "x"}).Code)
	assert.Equal(t, 403, do(t, h, http.MethodPost, base+"/update", 2, map[string]string{"message": "x"}).Code)
	assert.Equal(t, 400, do(t, h, http.MethodPost, base+"/update", 1, map[string]string{}).Code)

	resp := do(t, h, http.MethodPost, base+"/confirm", 2, nil)
	require.Equal(t, 200, resp.Code)
	var detail model.AnnouncementDetail
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	assert.True(t, detail.Confirmed)
	assert.True(t, detail.CanReset)
	assert.Nil(t, detail.Statistics)

	resp = do(t, h, http.MethodGet, base+"/statistics", 1, nil)
	require.Equal(t, 200, resp.Code)
	var stats model.Statistics
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, model.Statistics{Confirmed: 1, Unconfirmed: 1, Total: 2, Percent: 50}, stats)
	assert.Equal(t, 403, do(t, h, http.MethodGet, base+"/statistics", 2, nil).Code)

	resp = do(t, h, http.MethodGet, base+"/confirmations?state=confirmed", 1, nil)
	require.Equal(t, 200, resp.Code)
	var lists struct {
		State string       `json:"state"`
		Users []model.User `json:"users"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &lists))
	require.Len(t, lists.Users, 1)
	assert.Equal(t, "bob", lists.Users[0].Username)
	assert.Equal(t, 400, do(t, h, http.MethodGet, base+"/confirmations?state=all", 1, nil).Code)

	require.Equal(t, 200, do(t, h, http.MethodPost, base+"/close", 1, nil).Code)

	// 关闭后撤销确认不生效
	resp = do(t, h, http.MethodPost, base+"/reset", 2, nil)
	require.Equal(t, 200, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	assert.True(t, detail.Confirmed)
	assert.False(t, detail.CanReset)
	assert.Equal(t, []string{model.LabelOld}, detail.Labels)

	require.Equal(t, 200, do(t, h, http.MethodPost, base+"/reopen", 1, nil).Code)
	resp = do(t, h, http.MethodPost, base+"/reset-statistics", 1, nil)
	require.Equal(t, 200, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	require.NotNil(t, detail.Statistics)
	assert.Equal(t, int64(0), detail.Statistics.Confirmed)

	assert.Equal(t, 403, do(t, h, http.MethodPost, base+"/delete", 2, nil).Code)
	require.Equal(t, 200, do(t, h, http.MethodPost, base+"/delete", 1, nil).Code)
	assert.Equal(t, 404, do(t, h, http.MethodGet, base, 1, nil).Code)
}

func TestListAndSearch(t *testing.T) {
	h, _ := newTestServer(t)
	createAnnouncement(t, h, "Team meeting moved")
	createAnnouncement(t, h, "Parking closed")

	resp := do(t, h, http.MethodGet, "/api/v1/spaces/10/announcements?page=1&limit=1", 2, nil)
	require.Equal(t, 200, resp.Code)
	var page model.PaginatedAnnouncements
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 1)

	assert.Equal(t, 403, do(t, h, http.MethodGet, "/api/v1/spaces/10/announcements", 3, nil).Code)
	assert.Equal(t, 400, do(t, h, http.MethodGet, "/api/v1/spaces/abc/announcements", 2, nil).Code)
	assert.Equal(t, 400, do(t, h, http.MethodGet, "/api/v1/announcements/abc", 2, nil).Code)

	resp = do(t, h, http.MethodGet, "/api/v1/announcements/search?q=meeting", 2, nil)
	require.Equal(t, 200, resp.Code)
	var found []model.Announcement
	require.NoError(t, json.Unmarshal(resp.Data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Team meeting moved", found[0].Message)

	resp = do(t, h, http.MethodGet, "/api/v1/announcements/search?q=meeting", 3, nil)
	require.Equal(t, 200, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &found))
	assert.Empty(t, found)

	assert.Equal(t, 400, do(t, h, http.MethodGet, "/api/v1/announcements/search", 2, nil).Code)
}

func TestAdminRoutes(t *testing.T) {
	h, _ := newTestServer(t)

	assert.Equal(t, 403, do(t, h, http.MethodGet, "/api/v1/admin/config", 1, nil).Code)

	resp := do(t, h, http.MethodGet, "/api/v1/admin/config", 4, nil)
	require.Equal(t, 200, resp.Code)
	var settings model.ModuleSettings
	require.NoError(t, json.Unmarshal(resp.Data, &settings))
	assert.Equal(t, model.DefaultModuleSettings(), settings)

	resp = do(t, h, http.MethodPost, "/api/v1/admin/config", 4, map[string]interface{}{"page_size": 20, "notify_on_update": false})
	require.Equal(t, 200, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &settings))
	assert.Equal(t, model.ModuleSettings{NotifyOnCreate: true, NotifyOnUpdate: false, PageSize: 20}, settings)

	assert.Equal(t, 400, do(t, h, http.MethodPost, "/api/v1/admin/config", 4, map[string]interface{}{"page_size": 500}).Code)

	resp = do(t, h, http.MethodGet, "/api/v1/admin/status", 4, nil)
	require.Equal(t, 200, resp.Code)
	var status model.SystemStatus
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.Equal(t, float64(25), status.ConfirmedPercent)

	resp = do(t, h, http.MethodGet, "/api/v1/admin/permissions", 4, nil)
	require.Equal(t, 200, resp.Code)
	var perms []permission.Permission
	require.NoError(t, json.Unmarshal(resp.Data, &perms))
	require.Len(t, perms, 2)
	assert.Equal(t, permission.CreateAnnouncement.ID, perms[0].ID)
	assert.Equal(t, []model.SpaceGroup{model.GroupUser}, perms[1].FixedGroups)
	assert.Equal(t, 403, do(t, h, http.MethodGet, "/api/v1/admin/permissions", 2, nil).Code)
}

func TestConfirmByNonMember(t *testing.T) {
	h, _ := newTestServer(t)
	a := createAnnouncement(t, h, "Members only")
	base := fmt.Sprintf("/api/v1/announcements/%d", a.ID)

	assert.Equal(t, 403, do(t, h, http.MethodPost, base+"/confirm", 3, nil).Code)
	assert.Equal(t, 403, do(t, h, http.MethodPost, base+"/reset", 3, nil).Code)

	// 非成员的操作不会产生确认记录
	resp := do(t, h, http.MethodGet, base+"/statistics", 1, nil)
	require.Equal(t, 200, resp.Code)
	var stats model.Statistics
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, model.Statistics{Confirmed: 0, Unconfirmed: 2, Total: 2, Percent: 0}, stats)
}
