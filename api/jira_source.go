package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
)

// エラーメッセージに含めるレスポンス本文の最大長
const maxBodySnippet = 512

// jiraSource はJIRA REST APIからデータを取得します
type jiraSource struct {
	baseURL string
	client  *http.Client
}

// newJiraSource は認証ヘッダーを付与する HTTP クライアントを組み立てます
// 認証情報は oauth2 の静的トークンとして保持し、scheme (Basic/Bearer) をトークン種別にします
func newJiraSource(baseURL, credential, scheme string, base http.RoundTripper) *jiraSource {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: credential,
		TokenType:   scheme,
	})
	return &jiraSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: &oauth2.Transport{Source: ts, Base: base},
		},
	}
}

func (j *jiraSource) malformedKind() Kind { return KindUpstreamProtocol }

func (j *jiraSource) boards(ctx context.Context) ([]byte, error) {
	return j.get(ctx, opBoards, "/rest/agile/1.0/board", nil)
}

func (j *jiraSource) sprints(ctx context.Context, boardID int) ([]byte, error) {
	path := fmt.Sprintf("/rest/agile/1.0/board/%d/sprint", boardID)
	return j.get(ctx, opSprints, path, nil)
}

func (j *jiraSource) sprintReport(ctx context.Context, boardID, sprintID int) ([]byte, error) {
	query := url.Values{}
	query.Set("rapidViewId", strconv.Itoa(boardID))
	query.Set("sprintId", strconv.Itoa(sprintID))
	return j.get(ctx, opSprintReport, "/rest/greenhopper/1.0/rapid/charts/sprintreport", query)
}

func (j *jiraSource) checkAuth(ctx context.Context) error {
	_, err := j.get(ctx, opCheckAuth, "/rest/api/2/myself", nil)
	return err
}

// get は GET リクエストを送信し、2xx のレスポンス本文を返します
// リトライは行いません
func (j *jiraSource) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	u := j.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, newError(KindUpstreamUnavailable, op, fmt.Errorf("リクエスト作成エラー: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, newError(KindUpstreamUnavailable, op, fmt.Errorf("リクエスト送信エラー: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindUpstreamUnavailable, op, fmt.Errorf("レスポンス読み込みエラー: %w", err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	e := &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%s", snippet(body))}
	switch resp.StatusCode {
	case http.StatusNotFound:
		e.Kind = KindUpstreamNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		e.Kind = KindUpstreamUnavailable
	default:
		e.Kind = KindUpstreamProtocol
	}
	return nil, e
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodySnippet {
		s = s[:maxBodySnippet] + "..."
	}
	if s == "" {
		s = "(空の本文)"
	}
	return s
}
