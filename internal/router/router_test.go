package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"DevConnect/config"
	"DevConnect/consts"
	"DevConnect/internal/dto"
	v1 "DevConnect/internal/router/v1"
	"DevConnect/internal/service"
	"DevConnect/pkg/logger"
	"DevConnect/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConnectionService struct {
	service.ConnectionService

	sendFn        func(context.Context, *dto.SendConnectionRequest) (*dto.SendConnectionResponse, error)
	acceptFn      func(context.Context, *dto.ActionConnectionRequest) error
	declineFn     func(context.Context, *dto.ActionConnectionRequest) error
	listPendingFn func(context.Context) (*dto.ListPendingResponse, error)
}

var _ service.ConnectionService = (*fakeConnectionService)(nil)

func (f *fakeConnectionService) Send(ctx context.Context, req *dto.SendConnectionRequest) (*dto.SendConnectionResponse, error) {
	if f.sendFn == nil {
		return &dto.SendConnectionResponse{}, nil
	}
	return f.sendFn(ctx, req)
}

func (f *fakeConnectionService) Accept(ctx context.Context, req *dto.ActionConnectionRequest) error {
	if f.acceptFn == nil {
		return nil
	}
	return f.acceptFn(ctx, req)
}

func (f *fakeConnectionService) Decline(ctx context.Context, req *dto.ActionConnectionRequest) error {
	if f.declineFn == nil {
		return nil
	}
	return f.declineFn(ctx, req)
}

func (f *fakeConnectionService) ListPending(ctx context.Context) (*dto.ListPendingResponse, error) {
	if f.listPendingFn == nil {
		return &dto.ListPendingResponse{}, nil
	}
	return f.listPendingFn(ctx)
}

type fakeMessageService struct {
	service.MessageService

	recordFn  func(context.Context, string, string, string) (*dto.MessageItem, error)
	historyFn func(context.Context, string) (*dto.ListMessagesResponse, error)
}

var _ service.MessageService = (*fakeMessageService)(nil)

func (f *fakeMessageService) Record(ctx context.Context, senderUUID, recipientUUID, content string) (*dto.MessageItem, error) {
	if f.recordFn == nil {
		return &dto.MessageItem{}, nil
	}
	return f.recordFn(ctx, senderUUID, recipientUUID, content)
}

func (f *fakeMessageService) History(ctx context.Context, peerUUID string) (*dto.ListMessagesResponse, error) {
	if f.historyFn == nil {
		return &dto.ListMessagesResponse{}, nil
	}
	return f.historyFn(ctx, peerUUID)
}

type fakeUserService struct {
	service.UserService

	getProfileFn      func(context.Context) (*dto.UserProfile, error)
	updateSkillsFn    func(context.Context, *dto.UpdateSkillsRequest) (*dto.UserProfile, error)
	searchBySkillFn   func(context.Context, string) (*dto.SearchUsersResponse, error)
	listConnectionsFn func(context.Context) (*dto.ListConnectionsResponse, error)
}

var _ service.UserService = (*fakeUserService)(nil)

func (f *fakeUserService) GetProfile(ctx context.Context) (*dto.UserProfile, error) {
	if f.getProfileFn == nil {
		return &dto.UserProfile{}, nil
	}
	return f.getProfileFn(ctx)
}

func (f *fakeUserService) UpdateSkills(ctx context.Context, req *dto.UpdateSkillsRequest) (*dto.UserProfile, error) {
	if f.updateSkillsFn == nil {
		return &dto.UserProfile{}, nil
	}
	return f.updateSkillsFn(ctx, req)
}

func (f *fakeUserService) SearchBySkill(ctx context.Context, skill string) (*dto.SearchUsersResponse, error) {
	if f.searchBySkillFn == nil {
		return &dto.SearchUsersResponse{}, nil
	}
	return f.searchBySkillFn(ctx, skill)
}

func (f *fakeUserService) ListConnections(ctx context.Context) (*dto.ListConnectionsResponse, error) {
	if f.listConnectionsFn == nil {
		return &dto.ListConnectionsResponse{}, nil
	}
	return f.listConnectionsFn(ctx)
}

type resultBody struct {
	Code int32 `json:"code"`
}

var routerLoggerOnce sync.Once

func initRouterTest() {
	routerLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
		util.InitJWT(config.DefaultJWTConfig())
	})
}

func buildTestRouter(connSvc service.ConnectionService, msgSvc service.MessageService, userSvc service.UserService) *gin.Engine {
	return InitRouter(
		config.DefaultServerConfig(),
		v1.NewConnectionHandler(connSvc),
		v1.NewMessageHandler(msgSvc),
		v1.NewUserHandler(userSvc),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
}

func mustToken(t *testing.T, userUUID string) string {
	t.Helper()
	token, err := util.GenerateToken(userUUID, "tester", time.Hour)
	require.NoError(t, err)
	return token
}

func newJSONRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func newAuthedRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req := newJSONRequest(t, method, target, body)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, "user-a"))
	return req
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) int32 {
	t.Helper()
	var body resultBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestRouterHealth(t *testing.T) {
	initRouterTest()

	r := buildTestRouter(&fakeConnectionService{}, &fakeMessageService{}, &fakeUserService{})
	req, err := http.NewRequest(http.MethodGet, "/health", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterUnauthorized(t *testing.T) {
	initRouterTest()

	r := buildTestRouter(&fakeConnectionService{}, &fakeMessageService{}, &fakeUserService{})
	req := newJSONRequest(t, http.MethodGet, "/api/v1/users/profile", "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, consts.CodeUnauthorized, decodeCode(t, w))
}

func TestRouterConnectionSend(t *testing.T) {
	initRouterTest()

	called := false
	connSvc := &fakeConnectionService{
		sendFn: func(ctx context.Context, req *dto.SendConnectionRequest) (*dto.SendConnectionResponse, error) {
			called = true
			require.Equal(t, "user-b", req.RecipientId)
			// JWT 中间件注入的身份要透传到服务层
			assert.Equal(t, "user-a", ctx.Value("user_uuid"))
			return &dto.SendConnectionResponse{RequestId: 42}, nil
		},
	}
	r := buildTestRouter(connSvc, &fakeMessageService{}, &fakeUserService{})

	req := newAuthedRequest(t, http.MethodPost, "/api/v1/connections/send", `{"recipientId":"user-b"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, consts.CodeSuccess, decodeCode(t, w))
	assert.True(t, called)
}

func TestRouterConnectionSend_BizError(t *testing.T) {
	initRouterTest()

	connSvc := &fakeConnectionService{
		sendFn: func(context.Context, *dto.SendConnectionRequest) (*dto.SendConnectionResponse, error) {
			return nil, consts.NewBizError(consts.CodeSelfConnection)
		},
	}
	r := buildTestRouter(connSvc, &fakeMessageService{}, &fakeUserService{})

	req := newAuthedRequest(t, http.MethodPost, "/api/v1/connections/send", `{"recipientId":"user-a"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, consts.CodeSelfConnection, decodeCode(t, w))
}

func TestRouterConnectionSend_ParamError(t *testing.T) {
	initRouterTest()

	r := buildTestRouter(&fakeConnectionService{}, &fakeMessageService{}, &fakeUserService{})

	req := newAuthedRequest(t, http.MethodPost, "/api/v1/connections/send", `{}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, consts.CodeParamError, decodeCode(t, w))
}

func TestRouterConnectionAccept(t *testing.T) {
	initRouterTest()

	called := false
	connSvc := &fakeConnectionService{
		acceptFn: func(_ context.Context, req *dto.ActionConnectionRequest) error {
			called = true
			require.Equal(t, int64(42), req.RequestId)
			return nil
		},
	}
	r := buildTestRouter(connSvc, &fakeMessageService{}, &fakeUserService{})

	req := newAuthedRequest(t, http.MethodPut, "/api/v1/connections/accept", `{"requestId":42}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestRouterConnectionReject_NotFound(t *testing.T) {
	initRouterTest()

	connSvc := &fakeConnectionService{
		declineFn: func(context.Context, *dto.ActionConnectionRequest) error {
			return consts.NewBizError(consts.CodeRequestNotFound)
		},
	}
	r := buildTestRouter(connSvc, &fakeMessageService{}, &fakeUserService{})

	req := newAuthedRequest(t, http.MethodPut, "/api/v1/connections/reject", `{"requestId":42}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, consts.CodeRequestNotFound, decodeCode(t, w))
}

func TestRouterMessageSend(t *testing.T) {
	initRouterTest()

	msgSvc := &fakeMessageService{
		recordFn: func(_ context.Context, sender, recipient, content string) (*dto.MessageItem, error) {
			require.Equal(t, "user-a", sender)
			require.Equal(t, "user-b", recipient)
			require.Equal(t, "hello", content)
			return &dto.MessageItem{Id: "1", Sender: sender, Recipient: recipient, Content: content}, nil
		},
	}
	r := buildTestRouter(&fakeConnectionService{}, msgSvc, &fakeUserService{})

	req := newAuthedRequest(t, http.MethodPost, "/api/v1/messages", `{"recipient":"user-b","content":"hello"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, consts.CodeSuccess, decodeCode(t, w))
}

func TestRouterMessageSend_NotConnected(t *testing.T) {
	initRouterTest()

	msgSvc := &fakeMessageService{
		recordFn: func(context.Context, string, string, string) (*dto.MessageItem, error) {
			return nil, consts.NewBizError(consts.CodeNotConnected)
		},
	}
	r := buildTestRouter(&fakeConnectionService{}, msgSvc, &fakeUserService{})

	req := newAuthedRequest(t, http.MethodPost, "/api/v1/messages", `{"recipient":"user-b","content":"hello"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, consts.CodeNotConnected, decodeCode(t, w))
}

func TestRouterMessageHistory(t *testing.T) {
	initRouterTest()

	msgSvc := &fakeMessageService{
		historyFn: func(_ context.Context, peerUUID string) (*dto.ListMessagesResponse, error) {
			require.Equal(t, "user-b", peerUUID)
			return &dto.ListMessagesResponse{Messages: []*dto.MessageItem{{Id: "1"}}}, nil
		},
	}
	r := buildTestRouter(&fakeConnectionService{}, msgSvc, &fakeUserService{})

	req := newAuthedRequest(t, http.MethodGet, "/api/v1/messages/user-b", "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, consts.CodeSuccess, decodeCode(t, w))
}

func TestRouterUserSearch(t *testing.T) {
	initRouterTest()

	userSvc := &fakeUserService{
		searchBySkillFn: func(_ context.Context, skill string) (*dto.SearchUsersResponse, error) {
			require.Equal(t, "go", skill)
			return &dto.SearchUsersResponse{Users: []*dto.UserProfile{{Id: "user-b"}}}, nil
		},
	}
	r := buildTestRouter(&fakeConnectionService{}, &fakeMessageService{}, userSvc)

	req := newAuthedRequest(t, http.MethodGet, "/api/v1/users/search?skill=go", "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, consts.CodeSuccess, decodeCode(t, w))
}

func TestRouterUserUpdateSkills(t *testing.T) {
	initRouterTest()

	userSvc := &fakeUserService{
		updateSkillsFn: func(_ context.Context, req *dto.UpdateSkillsRequest) (*dto.UserProfile, error) {
			require.Equal(t, []string{"go", "redis"}, req.Skills)
			return &dto.UserProfile{Id: "user-a", Skills: req.Skills}, nil
		},
	}
	r := buildTestRouter(&fakeConnectionService{}, &fakeMessageService{}, userSvc)

	req := newAuthedRequest(t, http.MethodPut, "/api/v1/users/skills", `{"skills":["go","redis"]}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, consts.CodeSuccess, decodeCode(t, w))
}
