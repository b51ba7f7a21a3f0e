package httpservice_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beastmint/mintd/internal/core/application"
	"github.com/beastmint/mintd/internal/core/domain"
	httpservice "github.com/beastmint/mintd/internal/interface/http"
	"github.com/beastmint/mintd/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMintService struct {
	mock.Mock
}

func (m *mockMintService) Start() error { return nil }
func (m *mockMintService) Stop()        {}

func (m *mockMintService) Mint(
	ctx context.Context, input application.MintInput,
) (*application.MintResult, error) {
	args := m.Called(ctx, input)
	res, _ := args.Get(0).(*application.MintResult)
	return res, args.Error(1)
}

func (m *mockMintService) GetMintStatus(
	ctx context.Context, requestId string,
) (map[string]any, error) {
	args := m.Called(ctx, requestId)
	res, _ := args.Get(0).(map[string]any)
	return res, args.Error(1)
}

func (m *mockMintService) GetMintRecord(
	ctx context.Context, requestId string,
) (*domain.MintRecord, error) {
	args := m.Called(ctx, requestId)
	res, _ := args.Get(0).(*domain.MintRecord)
	return res, args.Error(1)
}

func (m *mockMintService) RefreshMintRecord(
	ctx context.Context, requestId string,
) (*domain.MintRecord, error) {
	args := m.Called(ctx, requestId)
	res, _ := args.Get(0).(*domain.MintRecord)
	return res, args.Error(1)
}

type mockTransferService struct {
	mock.Mock
}

func (m *mockTransferService) SendNft(
	ctx context.Context, nftAddress, toAddress string,
) (*application.NftTransferResult, error) {
	args := m.Called(ctx, nftAddress, toAddress)
	res, _ := args.Get(0).(*application.NftTransferResult)
	return res, args.Error(1)
}

func (m *mockTransferService) SendJetton(
	ctx context.Context, toAddress, amount string,
) (*application.JettonTransferResult, error) {
	args := m.Called(ctx, toAddress, amount)
	res, _ := args.Get(0).(*application.JettonTransferResult)
	return res, args.Error(1)
}

func (m *mockTransferService) GetWalletInfo(
	ctx context.Context,
) (*application.WalletInfo, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*application.WalletInfo)
	return res, args.Error(1)
}

func (m *mockTransferService) Close() {}

func newTestServer(
	t *testing.T,
) (*httptest.Server, *mockMintService, *mockTransferService) {
	t.Helper()
	mintSvc := &mockMintService{}
	transferSvc := &mockTransferService{}
	srv := httptest.NewServer(
		httpservice.NewRouter("v0.0.1", []string{"*"}, mintSvc, transferSvc),
	)
	t.Cleanup(srv.Close)
	return srv, mintSvc, transferSvc
}

func do(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	// nolint
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	status, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.Equal(t, "v0.0.1", body["version"])
}

func TestMint(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		srv, mintSvc, _ := newTestServer(t)
		traits := []domain.Trait{{TraitType: "Power", Value: float64(999), DisplayType: "number"}}
		mintSvc.On("Mint", mock.Anything, application.MintInput{
			Prompt:       "blue scales",
			Model:        "custom/model",
			Name:         "Azure Phoenix",
			OwnerAddress: "EQowner",
			Traits:       traits,
		}).Return(&application.MintResult{
			RequestId:   "r1",
			Status:      domain.MintStatusInQueue,
			Name:        "Azure Phoenix",
			Traits:      traits,
			ImageCid:    "QmImage",
			ImageUri:    "ipfs://QmImage",
			MetadataCid: "Qm123",
			MetadataUri: "ipfs://Qm123",
			Marketplace: map[string]any{"status": "in_queue"},
		}, nil)

		status, body := do(t, http.MethodPost, srv.URL+"/api/mint", `{
			"prompt": "blue scales",
			"replicateModel": "custom/model",
			"name": "Azure Phoenix",
			"ownerAddress": "EQowner",
			"traits": [{"trait_type": "Power", "value": 999, "display_type": "number"}]
		}`)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, true, body["success"])
		require.Equal(t, "r1", body["requestId"])
		require.Equal(t, "in_queue", body["status"])
		require.Equal(t, "Qm123", body["metadataCid"])
		require.Equal(t, "ipfs://Qm123", body["metadataUri"])
		require.Equal(t, map[string]any{"status": "in_queue"}, body["marketplace"])
		mintSvc.AssertExpectations(t)
	})

	t.Run("empty body", func(t *testing.T) {
		srv, mintSvc, _ := newTestServer(t)
		mintSvc.On("Mint", mock.Anything, application.MintInput{}).
			Return(&application.MintResult{RequestId: "r2"}, nil)

		status, body := do(t, http.MethodPost, srv.URL+"/api/mint", "")
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "r2", body["requestId"])
	})

	t.Run("invalid body", func(t *testing.T) {
		srv, mintSvc, _ := newTestServer(t)
		status, body := do(t, http.MethodPost, srv.URL+"/api/mint", `{"prompt":`)
		require.Equal(t, http.StatusBadRequest, status)
		require.Equal(t, "INVALID_REQUEST", body["code"])
		mintSvc.AssertNotCalled(t, "Mint", mock.Anything, mock.Anything)
	})

	t.Run("rejected", func(t *testing.T) {
		srv, mintSvc, _ := newTestServer(t)
		mintSvc.On("Mint", mock.Anything, mock.Anything).Return(
			nil,
			errors.MINT_REJECTED.New("marketplace mint failed (%d)", 400).
				WithMetadata(errors.MintRejectedMetadata{
					RequestId:   "r2",
					ImageUri:    "ipfs://QmImage",
					MetadataUri: "ipfs://QmMeta",
					StatusCode:  400,
					Body:        "bad owner",
				}),
		)

		status, body := do(t, http.MethodPost, srv.URL+"/api/mint", `{}`)
		require.Equal(t, errors.MINT_REJECTED.HTTPStatus, status)
		require.Equal(t, false, body["success"])
		require.Equal(t, "marketplace mint failed (400)", body["error"])
		require.Equal(t, map[string]any{
			"requestId":   "r2",
			"imageUri":    "ipfs://QmImage",
			"metadataUri": "ipfs://QmMeta",
			"statusCode":  float64(400),
			"body":        "bad owner",
		}, body["details"])
	})
}

func TestMintStatus(t *testing.T) {
	srv, mintSvc, _ := newTestServer(t)
	mintSvc.On("GetMintStatus", mock.Anything, "r1").
		Return(map[string]any{"success": true, "requestId": "r1", "status": "ready"}, nil)
	mintSvc.On("GetMintStatus", mock.Anything, "missing").Return(
		nil,
		errors.MINT_STATUS_CHECK_FAILED.New("status check failed (%d)", 404).
			WithMetadata(errors.StatusCodeMetadata{StatusCode: 404}),
	)

	status, body := do(t, http.MethodGet, srv.URL+"/api/mint/status/r1", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ready", body["status"])

	status, body = do(t, http.MethodGet, srv.URL+"/api/mint/status/missing", "")
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "MINT_STATUS_CHECK_FAILED", body["code"])
	require.Equal(t, "status check failed (404)", body["error"])
}

func TestMintRecord(t *testing.T) {
	index := int64(7)
	record := &domain.MintRecord{
		RequestId:      "r1",
		Status:         domain.MintStatusMinted,
		Name:           "Azure Phoenix",
		ImageReference: "ipfs://Qm123",
		OwnerAddress:   "EQowner",
		NftAddress:     "EQnft",
		NftIndex:       &index,
	}

	t.Run("get", func(t *testing.T) {
		srv, mintSvc, _ := newTestServer(t)
		mintSvc.On("GetMintRecord", mock.Anything, "r1").Return(record, nil)
		mintSvc.On("GetMintRecord", mock.Anything, "unknown").Return(
			nil,
			errors.RECORD_NOT_FOUND.New("mint record not found").
				WithMetadata(errors.RecordMetadata{RequestId: "unknown"}),
		)

		status, body := do(t, http.MethodGet, srv.URL+"/api/mint/records/r1", "")
		require.Equal(t, http.StatusOK, status)
		got, ok := body["record"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "minted", got["status"])
		require.Equal(t, "EQnft", got["nftAddress"])
		require.Equal(t, float64(7), got["nftIndex"])

		status, body = do(t, http.MethodGet, srv.URL+"/api/mint/records/unknown", "")
		require.Equal(t, http.StatusNotFound, status)
		require.Equal(t, "RECORD_NOT_FOUND", body["code"])
	})

	t.Run("refresh", func(t *testing.T) {
		srv, mintSvc, _ := newTestServer(t)
		mintSvc.On("RefreshMintRecord", mock.Anything, "r1").Return(record, nil)

		status, body := do(t, http.MethodPost, srv.URL+"/api/mint/status/r1/refresh", "")
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, true, body["success"])
		mintSvc.AssertExpectations(t)
	})
}

func TestSend(t *testing.T) {
	t.Run("nft", func(t *testing.T) {
		srv, _, transferSvc := newTestServer(t)
		transferSvc.On("SendNft", mock.Anything, "EQnft", "EQdest").
			Return(&application.NftTransferResult{
				FromWallet: "EQwallet", ToAddress: "EQdest", NftAddress: "EQnft", Seqno: 3,
			}, nil)

		status, body := do(
			t, http.MethodPost, srv.URL+"/api/send",
			`{"nftAddress":"EQnft","toAddress":"EQdest"}`,
		)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "EQwallet", body["fromWallet"])
		require.Equal(t, float64(3), body["seqno"])
	})

	t.Run("nft with low balance", func(t *testing.T) {
		srv, _, transferSvc := newTestServer(t)
		transferSvc.On("SendNft", mock.Anything, mock.Anything, mock.Anything).Return(
			nil,
			errors.INSUFFICIENT_BALANCE.New("insufficient balance").
				WithMetadata(errors.BalanceMetadata{Have: "0.05", Need: "0.1"}),
		)

		status, body := do(
			t, http.MethodPost, srv.URL+"/api/send",
			`{"nftAddress":"EQnft","toAddress":"EQdest"}`,
		)
		require.Equal(t, errors.INSUFFICIENT_BALANCE.HTTPStatus, status)
		require.Equal(t, map[string]any{"have": "0.05", "need": "0.1"}, body["details"])
	})

	t.Run("jetton", func(t *testing.T) {
		srv, _, transferSvc := newTestServer(t)
		transferSvc.On("SendJetton", mock.Anything, "EQdest", "2.5").
			Return(&application.JettonTransferResult{
				FromWallet: "EQwallet", ToWallet: "kQjetton", JettonAmount: "2.5", Seqno: 4,
			}, nil)

		status, body := do(
			t, http.MethodPost, srv.URL+"/api/send/rise", `{"toAddress":"EQdest","amount":"2.5"}`,
		)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "kQjetton", body["toWallet"])
		require.Equal(t, "2.5", body["jettonAmount"])
	})

	t.Run("jetton with numeric amount", func(t *testing.T) {
		srv, _, transferSvc := newTestServer(t)
		transferSvc.On("SendJetton", mock.Anything, "EQuser", "5").
			Return(&application.JettonTransferResult{
				FromWallet: "EQwallet", ToWallet: "EQuser", JettonAmount: "5", Seqno: 6,
			}, nil).Once()
		transferSvc.On("SendJetton", mock.Anything, "EQuser", "0.000000001").
			Return(&application.JettonTransferResult{
				FromWallet: "EQwallet", ToWallet: "EQuser", JettonAmount: "0.000000001", Seqno: 7,
			}, nil).Once()

		status, body := do(
			t, http.MethodPost, srv.URL+"/api/send/rise", `{"userWallet":"EQuser","amount":5}`,
		)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "EQuser", body["toWallet"])
		require.Equal(t, "5", body["jettonAmount"])

		status, _ = do(
			t, http.MethodPost, srv.URL+"/api/send/rise",
			`{"userWallet":"EQuser","amount":0.000000001}`,
		)
		require.Equal(t, http.StatusOK, status)
		transferSvc.AssertExpectations(t)
	})

	t.Run("jetton with malformed amount", func(t *testing.T) {
		srv, _, transferSvc := newTestServer(t)

		status, body := do(
			t, http.MethodPost, srv.URL+"/api/send/rise", `{"userWallet":"EQuser","amount":true}`,
		)
		require.Equal(t, http.StatusBadRequest, status)
		require.Equal(t, "INVALID_REQUEST", body["code"])
		transferSvc.AssertNotCalled(t, "SendJetton", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWallet(t *testing.T) {
	srv, _, transferSvc := newTestServer(t)
	transferSvc.On("GetWalletInfo", mock.Anything).Return(&application.WalletInfo{
		Address: "EQwallet", Balance: 1_500_000_000, BalanceTon: "1.5", Seqno: 9,
	}, nil)

	status, body := do(t, http.MethodGet, srv.URL+"/api/wallet", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "EQwallet", body["address"])
	require.Equal(t, "1.5", body["balanceTon"])
	require.True(t, strings.HasPrefix(body["address"].(string), "EQ"))
}
