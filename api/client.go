package api

import (
	"context"
	"io/fs"
	"net/http"
	"strings"

	"szpion/models"
)

// Mode はクライアントの動作モードです。生成後に変わることはありません
type Mode int

const (
	ModeLive Mode = iota
	ModeMocked
)

func (m Mode) String() string {
	if m == ModeMocked {
		return "mocked"
	}
	return "live"
}

const (
	opBoards       = "fetch boards"
	opSprints      = "fetch sprints"
	opSprintReport = "fetch sprint"
	opCheckAuth    = "check auth"
)

// source はボード/スプリントの生データの取得元です
// JIRA API と フィクスチャの2つの実装があり、クライアント生成時にどちらか一方を選びます
type source interface {
	boards(ctx context.Context) ([]byte, error)
	sprints(ctx context.Context, boardID int) ([]byte, error)
	sprintReport(ctx context.Context, boardID, sprintID int) ([]byte, error)
	checkAuth(ctx context.Context) error
	// malformedKind は取得したデータを正規化できなかった場合のエラー種別です
	malformedKind() Kind
}

// Client はJIRA APIとのやり取りを処理します
type Client struct {
	src  source
	mode Mode
}

// Option はクライアントの生成オプションです
type Option func(*options)

type options struct {
	authScheme string
	transport  http.RoundTripper
	fixtures   fs.FS
}

// WithAuthScheme は Authorization ヘッダーのスキームを指定します (既定: Basic)
func WithAuthScheme(scheme string) Option {
	return func(o *options) {
		if scheme != "" {
			o.authScheme = scheme
		}
	}
}

// WithTransport は live モードで使う下位の RoundTripper を指定します
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithFixtures は mocked モードで使うフィクスチャを差し替えます
func WithFixtures(fsys fs.FS) Option {
	return func(o *options) { o.fixtures = fsys }
}

// NewClient は新しいJIRAクライアントを作成します
// 通信は行わず、mocked が true ならフィクスチャを、false ならJIRA APIを取得元に固定します
func NewClient(baseURL, credential string, mocked bool, opts ...Option) *Client {
	o := &options{authScheme: "Basic"}
	for _, opt := range opts {
		opt(o)
	}

	if mocked {
		return &Client{src: NewFixtureSource(o.fixtures), mode: ModeMocked}
	}
	return &Client{
		src:  newJiraSource(baseURL, credential, o.authScheme, o.transport),
		mode: ModeLive,
	}
}

// Mode はクライアントの動作モードを返します
func (c *Client) Mode() Mode { return c.mode }

// FetchBoards はボード一覧を取得します
func (c *Client) FetchBoards(ctx context.Context) ([]models.Board, error) {
	return boardsFrom(ctx, c.src)
}

// FetchSprintsFromBoard はボードのスプリント一覧を取得します
func (c *Client) FetchSprintsFromBoard(ctx context.Context, boardID int) ([]models.Sprint, error) {
	return sprintsFrom(ctx, c.src, boardID)
}

// FetchSprint はスプリントの詳細を取得します
func (c *Client) FetchSprint(ctx context.Context, boardID, sprintID int) (*models.SprintDetail, error) {
	return sprintFrom(ctx, c.src, boardID, sprintID)
}

// CheckAuth はJIRA認証をチェックします。mocked モードでは常に成功します
func (c *Client) CheckAuth(ctx context.Context) error {
	return c.src.checkAuth(ctx)
}

func boardsFrom(ctx context.Context, src source) ([]models.Board, error) {
	raw, err := src.boards(ctx)
	if err != nil {
		return nil, err
	}
	boards, err := normalizeBoards(raw)
	if err != nil {
		return nil, newError(src.malformedKind(), opBoards, err)
	}
	return boards, nil
}

func sprintsFrom(ctx context.Context, src source, boardID int) ([]models.Sprint, error) {
	raw, err := src.sprints(ctx, boardID)
	if err != nil {
		return nil, err
	}
	sprints, err := normalizeSprints(raw, boardID)
	if err != nil {
		return nil, newError(src.malformedKind(), opSprints, err)
	}
	return sprints, nil
}

func sprintFrom(ctx context.Context, src source, boardID, sprintID int) (*models.SprintDetail, error) {
	raw, err := src.sprintReport(ctx, boardID, sprintID)
	if err != nil {
		return nil, err
	}
	detail, err := normalizeSprintReport(raw, boardID, sprintID)
	if err != nil {
		return nil, newError(src.malformedKind(), opSprintReport, err)
	}
	return detail, nil
}

// MaskCredential はログ出力用に認証情報の大部分を伏せた文字列を返します
func MaskCredential(credential string) string {
	if len(credential) <= 8 {
		return strings.Repeat("*", len(credential))
	}
	return strings.Repeat("*", len(credential)-4) + credential[len(credential)-4:]
}
