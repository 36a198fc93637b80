package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"szpion/fixtures"
	"szpion/models"
)

const (
	boardsFixture       = "boards.json"
	sprintsDir          = "sprints"
	sprintReportDir     = "sprintreport"
	validateConcurrency = 4
)

// FixtureSource は記録済みのJIRAレスポンスを返す取得元です
// ファイルの内容は live モードと同じ正規化処理を通るため、返す値の形は live モードと一致します
type FixtureSource struct {
	fsys fs.FS
}

// NewFixtureSource は新しいフィクスチャ取得元を作成します。fsys が nil なら同梱のフィクスチャを使います
func NewFixtureSource(fsys fs.FS) *FixtureSource {
	if fsys == nil {
		fsys = fixtures.FS
	}
	return &FixtureSource{fsys: fsys}
}

// Boards はボード一覧のフィクスチャを返します
func (f *FixtureSource) Boards(ctx context.Context) ([]models.Board, error) {
	return boardsFrom(ctx, f)
}

// SprintsForBoard はボードのスプリント一覧のフィクスチャを返します
func (f *FixtureSource) SprintsForBoard(ctx context.Context, boardID int) ([]models.Sprint, error) {
	return sprintsFrom(ctx, f, boardID)
}

// Sprint はスプリント詳細のフィクスチャを返します
func (f *FixtureSource) Sprint(ctx context.Context, boardID, sprintID int) (*models.SprintDetail, error) {
	return sprintFrom(ctx, f, boardID, sprintID)
}

func (f *FixtureSource) malformedKind() Kind { return KindFixtureInvalid }

func (f *FixtureSource) checkAuth(context.Context) error { return nil }

func (f *FixtureSource) boards(context.Context) ([]byte, error) {
	// ボード一覧がないのは設定の不備です
	return f.read(opBoards, boardsFixture, KindFixtureInvalid)
}

func (f *FixtureSource) sprints(_ context.Context, boardID int) ([]byte, error) {
	return f.read(opSprints, sprintsFile(boardID), KindUpstreamNotFound)
}

func (f *FixtureSource) sprintReport(_ context.Context, boardID, sprintID int) ([]byte, error) {
	return f.read(opSprintReport, sprintReportFile(boardID, sprintID), KindUpstreamNotFound)
}

func sprintsFile(boardID int) string {
	return path.Join(sprintsDir, strconv.Itoa(boardID)+".json")
}

func sprintReportFile(boardID, sprintID int) string {
	return path.Join(sprintReportDir, fmt.Sprintf("%d-%d.json", boardID, sprintID))
}

// read はフィクスチャを読み込みます。ファイルが存在しない場合は missing の種別を返します
func (f *FixtureSource) read(op, name string, missing Kind) ([]byte, error) {
	raw, err := fs.ReadFile(f.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, newError(missing, op, fmt.Errorf("フィクスチャがありません: %s", name))
	}
	if err != nil {
		return nil, newError(KindFixtureInvalid, op, fmt.Errorf("フィクスチャ読み込みエラー %s: %w", name, err))
	}
	return raw, nil
}

// Validate はすべてのフィクスチャを正規化して検証します
// ボードごとのスプリント一覧、一覧にあるスプリントごとのレポートが揃っていることも確認します
func (f *FixtureSource) Validate(ctx context.Context) error {
	boards, err := f.Boards(ctx)
	if err != nil {
		return err
	}

	sprintFiles, err := f.list(sprintsDir)
	if err != nil {
		return err
	}
	reportFiles, err := f.list(sprintReportDir)
	if err != nil {
		return err
	}

	present := make(map[string]bool, len(sprintFiles)+len(reportFiles))
	for _, name := range append(append([]string{}, sprintFiles...), reportFiles...) {
		present[name] = true
	}
	for _, b := range boards {
		if !present[sprintsFile(b.ID)] {
			return newError(KindFixtureInvalid, "validate fixtures",
				fmt.Errorf("ボード %d のスプリント一覧 %s がありません", b.ID, sprintsFile(b.ID)))
		}
	}

	var mu sync.Mutex
	known := make(map[[2]int]bool)
	var listed [][2]int

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(validateConcurrency)
	for _, name := range sprintFiles {
		g.Go(func() error {
			boardID, err := parseFixtureIDs(name, 1)
			if err != nil {
				return err
			}
			sprints, err := f.SprintsForBoard(gCtx, boardID[0])
			if err != nil {
				return asFixtureInvalid(err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, s := range sprints {
				known[[2]int{boardID[0], s.ID}] = true
				listed = append(listed, [2]int{boardID[0], s.ID})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// 一覧にあるスプリントは live モードと同様にレポートを返せる必要があります
	sort.Slice(listed, func(i, j int) bool {
		if listed[i][0] != listed[j][0] {
			return listed[i][0] < listed[j][0]
		}
		return listed[i][1] < listed[j][1]
	})
	for _, ids := range listed {
		if !present[sprintReportFile(ids[0], ids[1])] {
			return newError(KindFixtureInvalid, "validate fixtures",
				fmt.Errorf("ボード %d のスプリント %d のレポート %s がありません", ids[0], ids[1], sprintReportFile(ids[0], ids[1])))
		}
	}

	g, gCtx = errgroup.WithContext(ctx)
	g.SetLimit(validateConcurrency)
	for _, name := range reportFiles {
		g.Go(func() error {
			ids, err := parseFixtureIDs(name, 2)
			if err != nil {
				return err
			}
			if !known[[2]int{ids[0], ids[1]}] {
				return newError(KindFixtureInvalid, "validate fixtures",
					fmt.Errorf("%s: ボード %d のスプリント一覧にスプリント %d がありません", name, ids[0], ids[1]))
			}
			if _, err := f.Sprint(gCtx, ids[0], ids[1]); err != nil {
				return asFixtureInvalid(err)
			}
			return nil
		})
	}
	return g.Wait()
}

// list はディレクトリ内のフィクスチャのパスを名前順で返します。ディレクトリがなければ空です
func (f *FixtureSource) list(dir string) ([]string, error) {
	entries, err := fs.ReadDir(f.fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, newError(KindFixtureInvalid, "validate fixtures", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, path.Join(dir, e.Name()))
	}
	sort.Strings(names)
	return names, nil
}

// parseFixtureIDs は "sprints/1.json" や "sprintreport/1-2.json" からIDを取り出します
func parseFixtureIDs(name string, n int) ([]int, error) {
	base := strings.TrimSuffix(path.Base(name), ".json")
	parts := strings.Split(base, "-")
	if len(parts) != n {
		return nil, newError(KindFixtureInvalid, "validate fixtures", fmt.Errorf("不正なフィクスチャ名: %s", name))
	}

	ids := make([]int, n)
	for i, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return nil, newError(KindFixtureInvalid, "validate fixtures", fmt.Errorf("不正なフィクスチャ名: %s", name))
		}
		ids[i] = id
	}
	return ids, nil
}

// 一覧に載っているファイルが読めないのはフィクスチャの不備です
func asFixtureInvalid(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindFixtureInvalid {
		return err
	}
	return newError(KindFixtureInvalid, "validate fixtures", err)
}
