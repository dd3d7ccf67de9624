package application

import (
	"context"
	"sync"

	"github.com/ericfisherdev/medilens/internal/domain/model"
	"github.com/ericfisherdev/medilens/internal/domain/port/driven"
)

// --- fakeTokenStore ---

type fakeTokenStore struct {
	mu     sync.Mutex
	cred   *model.Credential
	getErr error
	gets   int
}

var _ driven.TokenStore = (*fakeTokenStore)(nil)

func (f *fakeTokenStore) Set(_ context.Context, cred *model.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cred = cred
	return nil
}

func (f *fakeTokenStore) Get(_ context.Context) (*model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.cred, nil
}

// --- fakeAPI ---

type fakeAPI struct {
	tokens *fakeTokenStore

	signupBody any
	signupErr  error
	loginBody  any
	loginErr   error
	logoutErr  error
	textBody   any
	textErr    error
	imageBody  any
	imageErr   error
	histBody   any
	histErr    error

	calls        []string
	lastSymptoms string
	lastCoords   *model.Coordinates
	lastImage    *model.ImageFile
}

var _ driven.AnalysisAPI = (*fakeAPI)(nil)

func (f *fakeAPI) Signup(_ context.Context, _, _, _ string) (any, error) {
	f.calls = append(f.calls, "signup")
	return f.signupBody, f.signupErr
}

func (f *fakeAPI) Login(ctx context.Context, username, _ string) (any, error) {
	f.calls = append(f.calls, "login")
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if token := model.AccessToken(f.loginBody); token != "" && f.tokens != nil {
		_ = f.tokens.Set(ctx, &model.Credential{Token: token, Subject: username})
	}
	return f.loginBody, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	if f.tokens != nil {
		_ = f.tokens.Set(ctx, nil)
	}
	return f.logoutErr
}

func (f *fakeAPI) AnalyzeText(_ context.Context, symptoms string, coords *model.Coordinates) (any, error) {
	f.calls = append(f.calls, "text")
	f.lastSymptoms = symptoms
	f.lastCoords = coords
	return f.textBody, f.textErr
}

func (f *fakeAPI) AnalyzeImage(_ context.Context, image model.ImageFile, symptoms string, coords *model.Coordinates) (any, error) {
	f.calls = append(f.calls, "image")
	f.lastImage = &image
	f.lastSymptoms = symptoms
	f.lastCoords = coords
	return f.imageBody, f.imageErr
}

func (f *fakeAPI) GetHistory(_ context.Context) (any, error) {
	f.calls = append(f.calls, "history")
	return f.histBody, f.histErr
}

// --- fakeSource ---

type fakeSource struct {
	mu     sync.Mutex
	coords model.Coordinates
	err    error
	block  chan struct{}
	calls  int
}

var _ driven.PositionSource = (*fakeSource)(nil)

func (f *fakeSource) CurrentPosition(ctx context.Context, _ model.PositionOptions) (model.Coordinates, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return model.Coordinates{}, ctx.Err()
		}
	}
	return f.coords, f.err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
