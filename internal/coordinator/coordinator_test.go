package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"

	"autopublicador/internal/ai"
	"autopublicador/internal/models"
	"autopublicador/internal/store"
)

// ---------- In-memory fakes ----------

type memKeywords struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Keyword
}

func newMemKeywords() *memKeywords {
	return &memKeywords{rows: map[int64]*models.Keyword{}}
}

func (m *memKeywords) add(text string, prio models.KeywordPriority) *models.Keyword {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	k := &models.Keyword{
		ID:        m.nextID,
		Keyword:   text,
		Status:    models.KeywordStatusPending,
		Priority:  prio,
		CreatedAt: time.Now(),
	}
	m.rows[k.ID] = k
	return k
}

func (m *memKeywords) get(id int64) models.Keyword {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

func (m *memKeywords) remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
}

func (m *memKeywords) Insert(k *models.Keyword) (*models.Keyword, error) {
	m.mu.Lock()
	for _, row := range m.rows {
		if row.Keyword == k.Keyword {
			m.mu.Unlock()
			return nil, store.ErrDuplicateKeyword
		}
	}
	m.mu.Unlock()
	prio := k.Priority
	if prio == "" {
		prio = models.KeywordPriorityMedium
	}
	cp := m.add(k.Keyword, prio)
	out := *cp
	return &out, nil
}

func (m *memKeywords) FindByText(keyword string) (*models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Keyword == keyword {
			out := *row
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memKeywords) Reserve(id int64) (*models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if k.Status != models.KeywordStatusPending {
		return nil, store.ErrContended
	}
	k.Status = models.KeywordStatusProcessing
	out := *k
	return &out, nil
}

func (m *memKeywords) ReserveNext(floor models.KeywordPriority) (*models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *models.Keyword
	for _, k := range m.rows {
		if k.Status != models.KeywordStatusPending || k.Priority.Rank() < floor.Rank() {
			continue
		}
		if best == nil ||
			k.Priority.Rank() > best.Priority.Rank() ||
			(k.Priority.Rank() == best.Priority.Rank() && k.ID < best.ID) {
			best = k
		}
	}
	if best == nil {
		return nil, nil
	}
	best.Status = models.KeywordStatusProcessing
	out := *best
	return &out, nil
}

func (m *memKeywords) transition(id int64, from, to models.KeywordStatus) (*models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if k.Status != from {
		return nil, store.ErrIllegalTransition
	}
	k.Status = to
	out := *k
	return &out, nil
}

func (m *memKeywords) Complete(id int64) (*models.Keyword, error) {
	k, err := m.transition(id, models.KeywordStatusProcessing, models.KeywordStatusCompleted)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	m.mu.Lock()
	m.rows[id].UsedAt = &now
	m.mu.Unlock()
	k.UsedAt = &now
	return k, nil
}

func (m *memKeywords) Fail(id int64, reason string) (*models.Keyword, error) {
	k, err := m.transition(id, models.KeywordStatusProcessing, models.KeywordStatusFailed)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.rows[id].Notes = &reason
	m.mu.Unlock()
	return k, nil
}

func (m *memKeywords) Release(id int64) (*models.Keyword, error) {
	return m.transition(id, models.KeywordStatusProcessing, models.KeywordStatusPending)
}

type memContent struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Content
}

func newMemContent() *memContent {
	return &memContent{rows: map[int64]*models.Content{}}
}

func (m *memContent) Create(c *models.Content) (*models.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *c
	cp.ID = m.nextID
	if cp.Status == "" {
		cp.Status = models.ContentStatusDraft
	}
	if cp.TemplateTheme == "" {
		cp.TemplateTheme = "default"
	}
	m.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memContent) Update(id int64, p store.ContentPatch) (*models.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Status != nil && *p.Status != c.Status {
		if !models.CanTransition(c.Status, *p.Status) {
			return nil, store.ErrIllegalTransition
		}
		c.Status = *p.Status
	}
	out := *c
	return &out, nil
}

func (m *memContent) get(id int64) models.Content {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

type memHistory struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.GenerationHistory
}

func newMemHistory() *memHistory {
	return &memHistory{rows: map[int64]*models.GenerationHistory{}}
}

func (m *memHistory) Begin(keywordID *int64, prompt string, contentType models.GenerationContentType, aiModel string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.rows[m.nextID] = &models.GenerationHistory{
		ID:          m.nextID,
		KeywordID:   keywordID,
		Prompt:      prompt,
		ContentType: contentType,
		AIModel:     aiModel,
		Status:      models.GenerationStatusPending,
	}
	return m.nextID, nil
}

func (m *memHistory) FinishCompleted(id int64, resultData json.RawMessage, postID *int64, tokensUsed *int, elapsedMS int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	if h.Status != models.GenerationStatusPending {
		return store.ErrAlreadyTerminal
	}
	h.Status = models.GenerationStatusCompleted
	h.ResultData = resultData
	h.PostID = postID
	h.TokensUsed = tokensUsed
	h.GenerationTimeMS = elapsedMS
	return nil
}

func (m *memHistory) FinishFailed(id int64, errMsg string, elapsedMS int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	if h.Status != models.GenerationStatusPending {
		return store.ErrAlreadyTerminal
	}
	h.Status = models.GenerationStatusFailed
	h.ErrorMessage = &errMsg
	h.GenerationTimeMS = elapsedMS
	return nil
}

func (m *memHistory) all() []models.GenerationHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.GenerationHistory, 0, len(m.rows))
	for i := int64(1); i <= m.nextID; i++ {
		if h, ok := m.rows[i]; ok {
			out = append(out, *h)
		}
	}
	return out
}

// scriptedGen returns one scripted outcome per call, in order. After the
// script runs out it repeats the last entry.
type scriptedGen struct {
	mu      sync.Mutex
	script  []genOutcome
	calls   int
	imgErr  error
	imgSeen int
}

type genOutcome struct {
	text string
	err  error
}

func (g *scriptedGen) Generate(ctx context.Context, systemPrompt, userPrompt string) (*ai.Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	i := g.calls
	g.calls++
	if i >= len(g.script) {
		i = len(g.script) - 1
	}
	out := g.script[i]
	g.mu.Unlock()
	if out.err != nil {
		return nil, out.err
	}
	tokens := 100
	return &ai.Completion{Text: out.text, Model: "deepseek-chat", TokensUsed: &tokens}, nil
}

func (g *scriptedGen) GenerateImage(ctx context.Context, provider, prompt, size string) ([]byte, string, error) {
	g.mu.Lock()
	g.imgSeen++
	g.mu.Unlock()
	if g.imgErr != nil {
		return nil, "", g.imgErr
	}
	return []byte{1, 2, 3}, "image/png", nil
}

func (g *scriptedGen) ActiveModel() string { return "deepseek-chat" }

const goodArticle = `[TÍTULO]
Título generado

[META_DESCRIPCIÓN]
Meta generada.

[CONTENIDO]
<p>Cuerpo del artículo.</p>`

func transientErr() error {
	return &ai.ProviderError{Provider: "deepseek", Status: http.StatusServiceUnavailable, Message: "overloaded", Transient: true}
}

func permanentErr() error {
	return &ai.ProviderError{Provider: "deepseek", Status: http.StatusUnauthorized, Message: "bad key", Transient: false}
}

func testCoordinator(kws *memKeywords, cs *memContent, hs *memHistory, gen Generator, opts Options) *Coordinator {
	if opts.NewBackoff == nil {
		opts.NewBackoff = func() retry.Backoff {
			return retry.NewConstant(time.Millisecond)
		}
	}
	return New(kws, cs, hs, gen, opts)
}

// ---------- Tests ----------

func TestRunSuccess(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	kw := kws.add("zapatillas running", models.KeywordPriorityHigh)

	c := testCoordinator(kws, cs, hs, &scriptedGen{script: []genOutcome{{text: goodArticle}}}, Options{})

	res, err := c.Run(context.Background(), Request{KeywordID: &kw.ID, AutoReview: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := kws.get(kw.ID); got.Status != models.KeywordStatusCompleted {
		t.Errorf("keyword status = %s", got.Status)
	}
	if got := kws.get(kw.ID); got.UsedAt == nil {
		t.Error("used_at not stamped")
	}

	post := cs.get(res.PostID)
	if post.Title != "Título generado" {
		t.Errorf("title = %q", post.Title)
	}
	if post.Status != models.ContentStatusReview {
		t.Errorf("auto-review: status = %s", post.Status)
	}
	if post.KeywordID == nil || *post.KeywordID != kw.ID {
		t.Error("article not linked to keyword")
	}

	rows := hs.all()
	if len(rows) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(rows))
	}
	h := rows[0]
	if h.Status != models.GenerationStatusCompleted {
		t.Errorf("history status = %s", h.Status)
	}
	if h.PostID == nil || *h.PostID != res.PostID {
		t.Error("history not linked to post")
	}
	if h.TokensUsed == nil || *h.TokensUsed != 100 {
		t.Error("tokens not recorded")
	}
	if h.AIModel != "deepseek-chat" {
		t.Errorf("ai_model = %q", h.AIModel)
	}
}

func TestRunWithoutAutoReviewLeavesDraft(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	kw := kws.add("seo local", models.KeywordPriorityMedium)

	c := testCoordinator(kws, cs, hs, &scriptedGen{script: []genOutcome{{text: goodArticle}}}, Options{})

	res, err := c.Run(context.Background(), Request{KeywordID: &kw.ID})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := cs.get(res.PostID); got.Status != models.ContentStatusDraft {
		t.Errorf("status = %s, want draft", got.Status)
	}
}

func TestRunTransientThenSuccess(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	kw := kws.add("marketing digital", models.KeywordPriorityMedium)

	gen := &scriptedGen{script: []genOutcome{
		{err: transientErr()},
		{text: goodArticle},
	}}
	c := testCoordinator(kws, cs, hs, gen, Options{})

	res, err := c.Run(context.Background(), Request{KeywordID: &kw.ID})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := kws.get(kw.ID); got.Status != models.KeywordStatusCompleted {
		t.Errorf("keyword status = %s", got.Status)
	}

	// One failed attempt row plus one completed row.
	rows := hs.all()
	if len(rows) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(rows))
	}
	if rows[0].Status != models.GenerationStatusFailed {
		t.Errorf("first attempt status = %s", rows[0].Status)
	}
	if rows[1].Status != models.GenerationStatusCompleted {
		t.Errorf("second attempt status = %s", rows[1].Status)
	}
	if rows[1].PostID == nil || *rows[1].PostID != res.PostID {
		t.Error("completed row not linked to post")
	}
}

func TestRunTransientExhausted(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	kw := kws.add("hosting barato", models.KeywordPriorityLow)

	gen := &scriptedGen{script: []genOutcome{{err: transientErr()}}}
	c := testCoordinator(kws, cs, hs, gen, Options{MaxAttempts: 3})

	_, err := c.Run(context.Background(), Request{KeywordID: &kw.ID})

	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GenerationError, got %v", err)
	}
	if ge.Retryable {
		t.Error("exhausted job must not be retryable")
	}
	if ge.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", ge.Attempts)
	}

	if got := kws.get(kw.ID); got.Status != models.KeywordStatusFailed {
		t.Errorf("keyword status = %s, want failed", got.Status)
	}
	if got := kws.get(kw.ID); got.Notes == nil {
		t.Error("failure reason not recorded in notes")
	}

	rows := hs.all()
	if len(rows) != 3 {
		t.Fatalf("expected 3 history rows (one per attempt), got %d", len(rows))
	}
	for _, h := range rows {
		if h.Status != models.GenerationStatusFailed {
			t.Errorf("attempt row status = %s", h.Status)
		}
	}
}

func TestRunPermanentFailsImmediately(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	kw := kws.add("reforma cocina", models.KeywordPriorityMedium)

	gen := &scriptedGen{script: []genOutcome{{err: permanentErr()}}}
	c := testCoordinator(kws, cs, hs, gen, Options{MaxAttempts: 3})

	_, err := c.Run(context.Background(), Request{KeywordID: &kw.ID})

	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GenerationError, got %v", err)
	}
	if ge.Attempts != 1 {
		t.Errorf("permanent error should not be retried, attempts = %d", ge.Attempts)
	}
	if got := kws.get(kw.ID); got.Status != models.KeywordStatusFailed {
		t.Errorf("keyword status = %s", got.Status)
	}
	if len(hs.all()) != 1 {
		t.Errorf("expected 1 history row, got %d", len(hs.all()))
	}
}

func TestRunEmptyBodyIsPermanent(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	kw := kws.add("keyword vacía", models.KeywordPriorityMedium)

	gen := &scriptedGen{script: []genOutcome{{text: "[TÍTULO]\nSolo título"}}}
	c := testCoordinator(kws, cs, hs, gen, Options{MaxAttempts: 3})

	_, err := c.Run(context.Background(), Request{KeywordID: &kw.ID})
	if !errors.Is(err, ai.ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody in chain, got %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("empty body should not be retried, calls = %d", gen.calls)
	}
	if got := kws.get(kw.ID); got.Status != models.KeywordStatusFailed {
		t.Errorf("keyword status = %s", got.Status)
	}
}

func TestRunTruncatesBody(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	kw := kws.add("texto largo", models.KeywordPriorityMedium)

	long := "[CONTENIDO]\n"
	for i := 0; i < 100; i++ {
		long += "<p>párrafo de relleno bastante largo para superar el límite</p>\n"
	}
	gen := &scriptedGen{script: []genOutcome{{text: long}}}
	c := testCoordinator(kws, cs, hs, gen, Options{MaxContentLength: 200})

	res, err := c.Run(context.Background(), Request{KeywordID: &kw.ID})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := len([]rune(cs.get(res.PostID).Body)); got > 200 {
		t.Errorf("body length = %d, want <= 200", got)
	}
}

func TestRunCancellationParksKeyword(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	kw := kws.add("trabajo cancelado", models.KeywordPriorityMedium)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &scriptedGen{script: []genOutcome{{text: goodArticle}}}
	c := testCoordinator(kws, cs, hs, gen, Options{})

	_, err := c.Run(ctx, Request{KeywordID: &kw.ID})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}

	// No dangling processing state.
	if got := kws.get(kw.ID); got.Status != models.KeywordStatusFailed {
		t.Errorf("keyword status = %s, want failed", got.Status)
	}
	for _, h := range hs.all() {
		if h.Status == models.GenerationStatusPending {
			t.Error("dangling pending history row")
		}
		if h.Status == models.GenerationStatusFailed {
			if h.ErrorMessage == nil || *h.ErrorMessage != "cancelled" {
				t.Errorf("history error message = %v, want \"cancelled\"", h.ErrorMessage)
			}
		}
	}
}

func TestRunVanishedKeyword(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	kw := kws.add("keyword fantasma", models.KeywordPriorityMedium)

	gen := &vanishGen{kws: kws, id: kw.ID}
	c := testCoordinator(kws, cs, hs, gen, Options{})

	_, err := c.Run(context.Background(), Request{KeywordID: &kw.ID})
	if !errors.Is(err, ErrVanished) {
		t.Fatalf("expected ErrVanished, got %v", err)
	}

	rows := hs.all()
	if len(rows) != 1 || rows[0].Status != models.GenerationStatusFailed {
		t.Error("vanished keyword must settle its history row as failed")
	}
}

// vanishGen deletes the keyword mid-generation to simulate a concurrent
// delete.
type vanishGen struct {
	kws *memKeywords
	id  int64
}

func (g *vanishGen) Generate(ctx context.Context, systemPrompt, userPrompt string) (*ai.Completion, error) {
	g.kws.remove(g.id)
	return &ai.Completion{Text: goodArticle, Model: "deepseek-chat"}, nil
}

func (g *vanishGen) GenerateImage(ctx context.Context, provider, prompt, size string) ([]byte, string, error) {
	return nil, "", errors.New("not supported")
}

func (g *vanishGen) ActiveModel() string { return "deepseek-chat" }

func TestRunNoWork(t *testing.T) {
	c := testCoordinator(newMemKeywords(), newMemContent(), newMemHistory(),
		&scriptedGen{script: []genOutcome{{text: goodArticle}}}, Options{})

	_, err := c.Run(context.Background(), Request{})
	if !errors.Is(err, ErrNoWork) {
		t.Fatalf("expected ErrNoWork, got %v", err)
	}
}

func TestRunPriorityOrder(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	kws.add("low prio", models.KeywordPriorityLow)
	high := kws.add("high prio", models.KeywordPriorityHigh)

	c := testCoordinator(kws, cs, hs, &scriptedGen{script: []genOutcome{{text: goodArticle}}}, Options{})

	res, err := c.Run(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.KeywordID != high.ID {
		t.Errorf("reserved keyword %d, want high-priority %d", res.KeywordID, high.ID)
	}
}

func TestRunByTextInsertsKeyword(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()

	c := testCoordinator(kws, cs, hs, &scriptedGen{script: []genOutcome{{text: goodArticle}}}, Options{})

	res, err := c.Run(context.Background(), Request{KeywordText: "keyword nueva"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := kws.get(res.KeywordID)
	if got.Keyword != "keyword nueva" {
		t.Errorf("keyword = %q", got.Keyword)
	}
	if got.Priority != models.KeywordPriorityMedium {
		t.Errorf("inserted keyword priority = %s, want medium", got.Priority)
	}
	if got.Status != models.KeywordStatusCompleted {
		t.Errorf("status = %s", got.Status)
	}
}

func TestRunContendedKeyword(t *testing.T) {
	kws := newMemKeywords()
	kw := kws.add("en proceso", models.KeywordPriorityMedium)
	if _, err := kws.Reserve(kw.ID); err != nil {
		t.Fatalf("pre-reserve: %v", err)
	}

	c := testCoordinator(kws, newMemContent(), newMemHistory(),
		&scriptedGen{script: []genOutcome{{text: goodArticle}}}, Options{})

	_, err := c.Run(context.Background(), Request{KeywordID: &kw.ID})
	if !errors.Is(err, store.ErrContended) {
		t.Fatalf("expected ErrContended, got %v", err)
	}
}

func TestRunImagePhaseDoesNotFailJob(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	kw := kws.add("con imagen", models.KeywordPriorityMedium)

	gen := &scriptedGen{
		script: []genOutcome{{text: goodArticle}},
		imgErr: errors.New("image model down"),
	}
	c := testCoordinator(kws, cs, hs, gen, Options{ImageEnabled: true})

	_, err := c.Run(context.Background(), Request{
		KeywordID:   &kw.ID,
		ContentType: models.GenerationBoth,
	})
	if err != nil {
		t.Fatalf("image failure must not fail the text job: %v", err)
	}
	if got := kws.get(kw.ID); got.Status != models.KeywordStatusCompleted {
		t.Errorf("keyword status = %s", got.Status)
	}

	rows := hs.all()
	if len(rows) != 2 {
		t.Fatalf("expected text + image history rows, got %d", len(rows))
	}
	if rows[1].ContentType != models.GenerationBoth {
		t.Errorf("image row content_type = %s", rows[1].ContentType)
	}
	if rows[1].Status != models.GenerationStatusFailed {
		t.Errorf("image row status = %s", rows[1].Status)
	}
}

func TestRunImageSkippedForTextRequests(t *testing.T) {
	kws := newMemKeywords()
	kw := kws.add("solo texto", models.KeywordPriorityMedium)

	gen := &scriptedGen{script: []genOutcome{{text: goodArticle}}}
	c := testCoordinator(kws, newMemContent(), newMemHistory(), gen, Options{ImageEnabled: true})

	if _, err := c.Run(context.Background(), Request{KeywordID: &kw.ID, ContentType: models.GenerationText}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gen.imgSeen != 0 {
		t.Error("image phase ran for a text-only request")
	}
}

func TestRunConcurrentJobsClaimDistinctKeywords(t *testing.T) {
	kws := newMemKeywords()
	cs := newMemContent()
	hs := newMemHistory()
	for i := 0; i < 4; i++ {
		kws.add(fmt.Sprintf("concurrente %d", i), models.KeywordPriorityMedium)
	}

	c := testCoordinator(kws, cs, hs, &scriptedGen{script: []genOutcome{{text: goodArticle}}}, Options{})

	var (
		mu      sync.Mutex
		claimed = map[int64]int{}
		wg      sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Run(context.Background(), Request{})
			if err != nil {
				return
			}
			mu.Lock()
			claimed[res.KeywordID]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(claimed) != 4 {
		t.Errorf("expected 4 distinct keywords claimed, got %d", len(claimed))
	}
	for id, n := range claimed {
		if n > 1 {
			t.Errorf("keyword %d claimed %d times", id, n)
		}
	}
}
