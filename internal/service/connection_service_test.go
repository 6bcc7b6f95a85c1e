package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"DevConnect/consts"
	"DevConnect/internal/dto"
	"DevConnect/internal/repository"
	"DevConnect/model"
	"DevConnect/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var svcLoggerOnce sync.Once

func initSvcTestLogger() {
	svcLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

func ctxWithUser(uuid string) context.Context {
	return context.WithValue(context.Background(), "user_uuid", uuid)
}

type fakeConnRepo struct {
	repository.IConnectionRepository

	createRequestFn    func(context.Context, string, string) (*model.ConnectionRequest, error)
	getRequestByIDFn   func(context.Context, int64) (*model.ConnectionRequest, error)
	getRequestByPairFn func(context.Context, string, string) (*model.ConnectionRequest, error)
	acceptRequestFn    func(context.Context, *model.ConnectionRequest) error
	declineRequestFn   func(context.Context, *model.ConnectionRequest) error
	listPendingForFn   func(context.Context, string) ([]*repository.PendingRequest, error)
	isConnectedFn      func(context.Context, string, string) (bool, error)
}

func (f *fakeConnRepo) CreateRequest(ctx context.Context, requesterUUID, recipientUUID string) (*model.ConnectionRequest, error) {
	if f.createRequestFn == nil {
		return nil, errors.New("unexpected CreateRequest call")
	}
	return f.createRequestFn(ctx, requesterUUID, recipientUUID)
}

func (f *fakeConnRepo) GetRequestByID(ctx context.Context, id int64) (*model.ConnectionRequest, error) {
	if f.getRequestByIDFn == nil {
		return nil, errors.New("unexpected GetRequestByID call")
	}
	return f.getRequestByIDFn(ctx, id)
}

func (f *fakeConnRepo) GetRequestByPair(ctx context.Context, a, b string) (*model.ConnectionRequest, error) {
	if f.getRequestByPairFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getRequestByPairFn(ctx, a, b)
}

func (f *fakeConnRepo) AcceptRequest(ctx context.Context, req *model.ConnectionRequest) error {
	if f.acceptRequestFn == nil {
		return nil
	}
	return f.acceptRequestFn(ctx, req)
}

func (f *fakeConnRepo) DeclineRequest(ctx context.Context, req *model.ConnectionRequest) error {
	if f.declineRequestFn == nil {
		return nil
	}
	return f.declineRequestFn(ctx, req)
}

func (f *fakeConnRepo) ListPendingFor(ctx context.Context, recipientUUID string) ([]*repository.PendingRequest, error) {
	if f.listPendingForFn == nil {
		return nil, nil
	}
	return f.listPendingForFn(ctx, recipientUUID)
}

func (f *fakeConnRepo) IsConnected(ctx context.Context, userUUID, peerUUID string) (bool, error) {
	if f.isConnectedFn == nil {
		return false, nil
	}
	return f.isConnectedFn(ctx, userUUID, peerUUID)
}

type fakeUserRepo struct {
	repository.IUserRepository

	getByUuidFn func(context.Context, string) (*model.UserInfo, error)
}

func (f *fakeUserRepo) GetByUuid(ctx context.Context, uuid string) (*model.UserInfo, error) {
	if f.getByUuidFn == nil {
		return &model.UserInfo{Uuid: uuid}, nil
	}
	return f.getByUuidFn(ctx, uuid)
}

func TestConnectionService_Send_Success(t *testing.T) {
	initSvcTestLogger()

	connRepo := &fakeConnRepo{
		createRequestFn: func(_ context.Context, requester, recipient string) (*model.ConnectionRequest, error) {
			assert.Equal(t, "user-a", requester)
			assert.Equal(t, "user-b", recipient)
			return &model.ConnectionRequest{
				Id:            42,
				RequesterUuid: requester,
				RecipientUuid: recipient,
				Status:        model.ConnectionStatusPending,
			}, nil
		},
	}
	svc := NewConnectionService(connRepo, &fakeUserRepo{})

	resp, err := svc.Send(ctxWithUser("user-a"), &dto.SendConnectionRequest{RecipientId: "user-b"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.RequestId)
}

func TestConnectionService_Send_SelfConnection(t *testing.T) {
	initSvcTestLogger()

	svc := NewConnectionService(&fakeConnRepo{}, &fakeUserRepo{})

	_, err := svc.Send(ctxWithUser("user-a"), &dto.SendConnectionRequest{RecipientId: "user-a"})
	assert.Equal(t, consts.CodeSelfConnection, consts.ExtractErrorCode(err))
}

func TestConnectionService_Send_RecipientNotFound(t *testing.T) {
	initSvcTestLogger()

	userRepo := &fakeUserRepo{
		getByUuidFn: func(context.Context, string) (*model.UserInfo, error) {
			return nil, repository.ErrRecordNotFound
		},
	}
	svc := NewConnectionService(&fakeConnRepo{}, userRepo)

	_, err := svc.Send(ctxWithUser("user-a"), &dto.SendConnectionRequest{RecipientId: "ghost"})
	assert.Equal(t, consts.CodeUserNotFound, consts.ExtractErrorCode(err))
}

func TestConnectionService_Send_DuplicateEdge(t *testing.T) {
	initSvcTestLogger()

	// 任意状态、任意方向的既有边都视为重复
	connRepo := &fakeConnRepo{
		getRequestByPairFn: func(context.Context, string, string) (*model.ConnectionRequest, error) {
			return &model.ConnectionRequest{Id: 7, Status: model.ConnectionStatusDeclined}, nil
		},
	}
	svc := NewConnectionService(connRepo, &fakeUserRepo{})

	_, err := svc.Send(ctxWithUser("user-b"), &dto.SendConnectionRequest{RecipientId: "user-a"})
	assert.Equal(t, consts.CodeConnectionExists, consts.ExtractErrorCode(err))
}

func TestConnectionService_Send_DuplicateKeyRace(t *testing.T) {
	initSvcTestLogger()

	// 预检查通过但插入撞唯一索引：并发窗口输给了另一条请求
	connRepo := &fakeConnRepo{
		createRequestFn: func(context.Context, string, string) (*model.ConnectionRequest, error) {
			return nil, repository.ErrDuplicateKey
		},
	}
	svc := NewConnectionService(connRepo, &fakeUserRepo{})

	_, err := svc.Send(ctxWithUser("user-a"), &dto.SendConnectionRequest{RecipientId: "user-b"})
	assert.Equal(t, consts.CodeConnectionExists, consts.ExtractErrorCode(err))
}

func TestConnectionService_Send_ConcurrentPairUnique(t *testing.T) {
	initSvcTestLogger()

	// 共享假仓储模拟 pair_key 唯一索引：同一无序对只允许插入一行。
	// 预检查（GetRequestByPair）始终返回不存在，让所有并发请求都
	// 走进 check-then-act 窗口，由插入阶段决出唯一赢家。
	var (
		mu      sync.Mutex
		created = make(map[string]bool)
		nextID  int64
	)
	connRepo := &fakeConnRepo{
		createRequestFn: func(_ context.Context, requester, recipient string) (*model.ConnectionRequest, error) {
			mu.Lock()
			defer mu.Unlock()
			key := model.NormalizePairKey(requester, recipient)
			if created[key] {
				return nil, repository.ErrDuplicateKey
			}
			created[key] = true
			nextID++
			return &model.ConnectionRequest{
				Id:            nextID,
				RequesterUuid: requester,
				RecipientUuid: recipient,
				Status:        model.ConnectionStatusPending,
			}, nil
		},
	}
	svc := NewConnectionService(connRepo, &fakeUserRepo{})

	const attempts = 8
	codes := make(chan int32, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		requester, recipient := "user-a", "user-b"
		if i%2 == 1 {
			// 双向并发发起，pair_key 与方向无关
			requester, recipient = recipient, requester
		}
		wg.Add(1)
		go func(requester, recipient string) {
			defer wg.Done()
			_, err := svc.Send(ctxWithUser(requester), &dto.SendConnectionRequest{RecipientId: recipient})
			codes <- consts.ExtractErrorCode(err)
		}(requester, recipient)
	}
	wg.Wait()
	close(codes)

	success, duplicate := 0, 0
	for code := range codes {
		switch code {
		case consts.CodeSuccess:
			success++
		case consts.CodeConnectionExists:
			duplicate++
		default:
			t.Fatalf("unexpected code %d", code)
		}
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, attempts-1, duplicate)
}

func TestConnectionService_Send_Unauthenticated(t *testing.T) {
	initSvcTestLogger()

	svc := NewConnectionService(&fakeConnRepo{}, &fakeUserRepo{})

	_, err := svc.Send(context.Background(), &dto.SendConnectionRequest{RecipientId: "user-b"})
	assert.Equal(t, consts.CodeUnauthorized, consts.ExtractErrorCode(err))
}

func TestConnectionService_Accept_Success(t *testing.T) {
	initSvcTestLogger()

	accepted := false
	connRepo := &fakeConnRepo{
		getRequestByIDFn: func(_ context.Context, id int64) (*model.ConnectionRequest, error) {
			return &model.ConnectionRequest{
				Id:            id,
				RequesterUuid: "user-a",
				RecipientUuid: "user-b",
				Status:        model.ConnectionStatusPending,
			}, nil
		},
		acceptRequestFn: func(_ context.Context, req *model.ConnectionRequest) error {
			accepted = true
			assert.Equal(t, int64(42), req.Id)
			return nil
		},
	}
	svc := NewConnectionService(connRepo, &fakeUserRepo{})

	err := svc.Accept(ctxWithUser("user-b"), &dto.ActionConnectionRequest{RequestId: 42})
	require.NoError(t, err)
	assert.True(t, accepted)
}

func TestConnectionService_Accept_NotRecipient(t *testing.T) {
	initSvcTestLogger()

	// 别人的请求对外等同于不存在
	connRepo := &fakeConnRepo{
		getRequestByIDFn: func(_ context.Context, id int64) (*model.ConnectionRequest, error) {
			return &model.ConnectionRequest{
				Id:            id,
				RequesterUuid: "user-a",
				RecipientUuid: "user-b",
				Status:        model.ConnectionStatusPending,
			}, nil
		},
	}
	svc := NewConnectionService(connRepo, &fakeUserRepo{})

	err := svc.Accept(ctxWithUser("user-c"), &dto.ActionConnectionRequest{RequestId: 42})
	assert.Equal(t, consts.CodeRequestNotFound, consts.ExtractErrorCode(err))

	err = svc.Accept(ctxWithUser("user-a"), &dto.ActionConnectionRequest{RequestId: 42})
	assert.Equal(t, consts.CodeRequestNotFound, consts.ExtractErrorCode(err))
}

func TestConnectionService_Accept_AlreadyActioned(t *testing.T) {
	initSvcTestLogger()

	connRepo := &fakeConnRepo{
		getRequestByIDFn: func(_ context.Context, id int64) (*model.ConnectionRequest, error) {
			return &model.ConnectionRequest{
				Id:            id,
				RequesterUuid: "user-a",
				RecipientUuid: "user-b",
				Status:        model.ConnectionStatusAccepted,
			}, nil
		},
	}
	svc := NewConnectionService(connRepo, &fakeUserRepo{})

	err := svc.Accept(ctxWithUser("user-b"), &dto.ActionConnectionRequest{RequestId: 42})
	assert.Equal(t, consts.CodeRequestActioned, consts.ExtractErrorCode(err))
}

func TestConnectionService_Accept_StaleState(t *testing.T) {
	initSvcTestLogger()

	// 读到 pending 但更新时已被并发处理
	connRepo := &fakeConnRepo{
		getRequestByIDFn: func(_ context.Context, id int64) (*model.ConnectionRequest, error) {
			return &model.ConnectionRequest{
				Id:            id,
				RequesterUuid: "user-a",
				RecipientUuid: "user-b",
				Status:        model.ConnectionStatusPending,
			}, nil
		},
		acceptRequestFn: func(context.Context, *model.ConnectionRequest) error {
			return repository.ErrStaleState
		},
	}
	svc := NewConnectionService(connRepo, &fakeUserRepo{})

	err := svc.Accept(ctxWithUser("user-b"), &dto.ActionConnectionRequest{RequestId: 42})
	assert.Equal(t, consts.CodeRequestActioned, consts.ExtractErrorCode(err))
}

func TestConnectionService_Decline_Success(t *testing.T) {
	initSvcTestLogger()

	declined := false
	connRepo := &fakeConnRepo{
		getRequestByIDFn: func(_ context.Context, id int64) (*model.ConnectionRequest, error) {
			return &model.ConnectionRequest{
				Id:            id,
				RequesterUuid: "user-a",
				RecipientUuid: "user-b",
				Status:        model.ConnectionStatusPending,
			}, nil
		},
		declineRequestFn: func(context.Context, *model.ConnectionRequest) error {
			declined = true
			return nil
		},
	}
	svc := NewConnectionService(connRepo, &fakeUserRepo{})

	err := svc.Decline(ctxWithUser("user-b"), &dto.ActionConnectionRequest{RequestId: 42})
	require.NoError(t, err)
	assert.True(t, declined)
}

func TestConnectionService_ListPending(t *testing.T) {
	initSvcTestLogger()

	connRepo := &fakeConnRepo{
		listPendingForFn: func(_ context.Context, recipientUUID string) ([]*repository.PendingRequest, error) {
			assert.Equal(t, "user-b", recipientUUID)
			return []*repository.PendingRequest{
				{RequestId: 1, RequesterUuid: "user-a", RequesterUsername: "alice", CreatedAtUnix: 1700000000},
			}, nil
		},
	}
	svc := NewConnectionService(connRepo, &fakeUserRepo{})

	resp, err := svc.ListPending(ctxWithUser("user-b"))
	require.NoError(t, err)
	require.Len(t, resp.Requests, 1)
	assert.Equal(t, int64(1), resp.Requests[0].RequestId)
	assert.Equal(t, "user-a", resp.Requests[0].RequesterId)
	assert.Equal(t, "alice", resp.Requests[0].RequesterUsername)
}
