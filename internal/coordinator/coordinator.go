// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package coordinator drives one content-generation job end to end: admit a
// keyword, reserve it, call the LLM provider, persist the article and retire
// the keyword. Every provider attempt leaves exactly one generation_history
// row, and no code path leaves a keyword stuck in processing.
package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"autopublicador/internal/ai"
	"autopublicador/internal/models"
	"autopublicador/internal/store"
)

var (
	// ErrNoWork is returned when no eligible pending keyword exists.
	ErrNoWork = errors.New("coordinator: no pending keyword available")

	// ErrVanished is returned when the reserved keyword disappeared while
	// its article was being generated.
	ErrVanished = errors.New("coordinator: keyword vanished during generation")
)

// GenerationError is the terminal failure of a job. Retryable is false when
// the keyword has been parked as failed: resubmitting the same request will
// not help until an operator intervenes.
type GenerationError struct {
	KeywordID int64
	Attempts  int
	Retryable bool
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("coordinator: keyword %d failed after %d attempt(s): %v",
		e.KeywordID, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// KeywordStore is the keyword-pool surface the coordinator needs.
type KeywordStore interface {
	Insert(k *models.Keyword) (*models.Keyword, error)
	FindByText(keyword string) (*models.Keyword, error)
	Reserve(id int64) (*models.Keyword, error)
	ReserveNext(floor models.KeywordPriority) (*models.Keyword, error)
	Complete(id int64) (*models.Keyword, error)
	Fail(id int64, reason string) (*models.Keyword, error)
	Release(id int64) (*models.Keyword, error)
}

// ContentStore is the article surface the coordinator needs.
type ContentStore interface {
	Create(c *models.Content) (*models.Content, error)
	Update(id int64, p store.ContentPatch) (*models.Content, error)
}

// HistoryStore records generation attempts.
type HistoryStore interface {
	Begin(keywordID *int64, prompt string, contentType models.GenerationContentType, aiModel string) (int64, error)
	FinishCompleted(id int64, resultData json.RawMessage, postID *int64, tokensUsed *int, elapsedMS int64) error
	FinishFailed(id int64, errMsg string, elapsedMS int64) error
}

// Generator is the provider surface the coordinator needs. *ai.Registry
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (*ai.Completion, error)
	GenerateImage(ctx context.Context, provider, prompt, size string) ([]byte, string, error)
	ActiveModel() string
}

// Options tune a Coordinator. Zero values fall back to the defaults below.
type Options struct {
	MaxAttempts      int           // provider attempts per job, default 3
	JobTimeout       time.Duration // per-attempt provider budget, default 120s
	MaxContentLength int           // article body cap in characters, 0 = unlimited
	Language         string        // content language, default "es"
	Style            string        // writing style, default "profesional"

	ImageEnabled  bool
	ImageProvider string // empty = active provider
	ImageSize     string

	// NewBackoff builds the inter-attempt backoff strategy. Each job gets a
	// fresh one so attempt counts never bleed between jobs.
	NewBackoff func() retry.Backoff
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.JobTimeout <= 0 {
		o.JobTimeout = 120 * time.Second
	}
	if o.Language == "" {
		o.Language = "es"
	}
	if o.Style == "" {
		o.Style = "profesional"
	}
	if o.ImageSize == "" {
		o.ImageSize = "1024x1024"
	}
	if o.NewBackoff == nil {
		o.NewBackoff = func() retry.Backoff {
			return retry.NewExponential(500 * time.Millisecond)
		}
	}
	return o
}

// Request selects which keyword to generate for. Exactly one of KeywordID or
// KeywordText may be set; when both are empty the best pending keyword at or
// above PriorityFloor is claimed.
type Request struct {
	KeywordID     *int64
	KeywordText   string
	PriorityFloor models.KeywordPriority
	ContentType   models.GenerationContentType
	TemplateTheme string
	AutoReview    bool
}

// Result identifies what a successful job produced.
type Result struct {
	KeywordID int64 `json:"keyword_id"`
	PostID    int64 `json:"post_id"`
	HistoryID int64 `json:"history_id"`
}

// Coordinator runs generation jobs. Safe for concurrent use; concurrency
// control lives in the keyword store's row locks.
type Coordinator struct {
	keywords KeywordStore
	content  ContentStore
	history  HistoryStore
	gen      Generator
	opts     Options
}

// New creates a Coordinator.
func New(keywords KeywordStore, content ContentStore, history HistoryStore, gen Generator, opts Options) *Coordinator {
	return &Coordinator{
		keywords: keywords,
		content:  content,
		history:  history,
		gen:      gen,
		opts:     opts.withDefaults(),
	}
}

// Run executes one generation job. On return the selected keyword is in a
// settled state: completed on success, failed on terminal failure, pending
// only if it was never reserved.
func (c *Coordinator) Run(ctx context.Context, req Request) (*Result, error) {
	if req.ContentType == "" {
		req.ContentType = models.GenerationText
	}

	kw, err := c.admit(req)
	if err != nil {
		return nil, err
	}

	slog.Info("generation job started",
		"keyword_id", kw.ID,
		"keyword", kw.Keyword,
		"priority", kw.Priority,
	)

	prompt := ai.ArticlePrompt(ai.PromptParams{
		Keyword:      kw.Keyword,
		SearchVolume: kw.SearchVolume,
		Difficulty:   kw.Difficulty,
		Notes:        kw.Notes,
		Language:     c.opts.Language,
		Style:        c.opts.Style,
		MaxLength:    c.opts.MaxContentLength,
	})

	backoff := c.opts.NewBackoff()
	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		res, retryable, err := c.attempt(ctx, kw, req, prompt)
		if err == nil {
			return res, nil
		}
		lastErr = err

		// Parent cancellation is terminal regardless of classification.
		if ctx.Err() != nil {
			c.park(kw.ID, "generation cancelled: "+ctx.Err().Error())
			return nil, fmt.Errorf("coordinator: cancelled: %w", err)
		}
		if errors.Is(err, ErrVanished) {
			return nil, err
		}
		if !retryable || attempt == c.opts.MaxAttempts {
			c.park(kw.ID, fmt.Sprintf("generation failed (attempt %d/%d): %v",
				attempt, c.opts.MaxAttempts, err))
			return nil, &GenerationError{
				KeywordID: kw.ID,
				Attempts:  attempt,
				Retryable: false,
				Err:       err,
			}
		}

		// Transient failure with budget left: give the keyword back to the
		// pool while we wait, then claim it again.
		if _, err := c.keywords.Release(kw.ID); err != nil {
			return nil, fmt.Errorf("coordinator: release before retry: %w", err)
		}
		slog.Warn("generation attempt failed, retrying",
			"keyword_id", kw.ID,
			"attempt", attempt,
			"error", lastErr,
		)
		if err := c.sleep(ctx, backoff); err != nil {
			c.reclaimAndPark(kw.ID, "generation cancelled while backing off")
			return nil, err
		}
		kw, err = c.keywords.Reserve(kw.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrVanished
			}
			return nil, fmt.Errorf("coordinator: re-reserve for retry: %w", err)
		}
	}

	// Unreachable: the loop always returns. Kept for the compiler.
	return nil, lastErr
}

// admit turns the request into a reserved (processing) keyword.
func (c *Coordinator) admit(req Request) (*models.Keyword, error) {
	switch {
	case req.KeywordID != nil:
		return c.keywords.Reserve(*req.KeywordID)

	case req.KeywordText != "":
		kw, err := c.keywords.FindByText(req.KeywordText)
		if err != nil {
			return nil, err
		}
		if kw == nil {
			kw, err = c.keywords.Insert(&models.Keyword{
				Keyword:  req.KeywordText,
				Priority: models.KeywordPriorityMedium,
			})
			if errors.Is(err, store.ErrDuplicateKeyword) {
				// Lost an insert race; the row exists now.
				kw, err = c.keywords.FindByText(req.KeywordText)
				if err == nil && kw == nil {
					err = store.ErrNotFound
				}
			}
			if err != nil {
				return nil, err
			}
		}
		return c.keywords.Reserve(kw.ID)

	default:
		floor := req.PriorityFloor
		if floor == "" {
			floor = models.KeywordPriorityLow
		}
		kw, err := c.keywords.ReserveNext(floor)
		if err != nil {
			return nil, err
		}
		if kw == nil {
			return nil, ErrNoWork
		}
		return kw, nil
	}
}

// attempt performs a single provider call plus its bookkeeping. It returns
// the job result on success, or the error and whether it is worth retrying.
func (c *Coordinator) attempt(ctx context.Context, kw *models.Keyword, req Request, prompt string) (*Result, bool, error) {
	historyID, err := c.history.Begin(&kw.ID, prompt, models.GenerationText, c.gen.ActiveModel())
	if err != nil {
		return nil, false, fmt.Errorf("coordinator: open history: %w", err)
	}

	jobCtx, cancel := context.WithTimeout(ctx, c.opts.JobTimeout)
	start := time.Now()
	comp, err := c.gen.Generate(jobCtx, ai.SystemPrompt, prompt)
	cancel()
	elapsedMS := time.Since(start).Milliseconds()

	if err != nil {
		msg := err.Error()
		// A cancelled job records the fixed message, not the wrapped
		// transport error the provider saw.
		if ctx.Err() != nil {
			msg = "cancelled"
		}
		c.finishFailed(historyID, msg, elapsedMS)
		// A blown per-attempt budget surfaces as a transport error and is
		// retryable; everything else defers to the provider classification.
		return nil, ai.IsTransient(err), err
	}

	article, err := ai.ParseArticle(comp.Text, c.opts.MaxContentLength)
	if err != nil {
		c.finishFailed(historyID, err.Error(), elapsedMS)
		return nil, false, err
	}
	if article.Title == "" {
		article.Title = kw.Keyword
	}

	post, err := c.content.Create(&models.Content{
		Title:           article.Title,
		Body:            article.Body,
		KeywordID:       &kw.ID,
		Keywords:        &kw.Keyword,
		MetaDescription: article.MetaDescription,
		Status:          models.ContentStatusDraft,
		TemplateTheme:   req.TemplateTheme,
	})
	if err != nil {
		c.finishFailed(historyID, err.Error(), elapsedMS)
		return nil, false, fmt.Errorf("coordinator: persist article: %w", err)
	}

	if req.AutoReview {
		review := models.ContentStatusReview
		if _, err := c.content.Update(post.ID, store.ContentPatch{Status: &review}); err != nil {
			slog.Warn("article left in draft, review transition failed",
				"post_id", post.ID, "error", err)
		}
	}

	if _, err := c.keywords.Complete(kw.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.finishFailed(historyID, "keyword vanished during generation", elapsedMS)
			return nil, false, ErrVanished
		}
		c.finishFailed(historyID, err.Error(), elapsedMS)
		return nil, false, fmt.Errorf("coordinator: complete keyword: %w", err)
	}

	resultData, _ := json.Marshal(map[string]any{
		"title":            article.Title,
		"meta_description": article.MetaDescription,
		"model":            comp.Model,
		"content_length":   len(article.Body),
	})
	if err := c.history.FinishCompleted(historyID, resultData, &post.ID, comp.TokensUsed, elapsedMS); err != nil {
		slog.Warn("history row not settled", "history_id", historyID, "error", err)
	}

	if c.opts.ImageEnabled &&
		(req.ContentType == models.GenerationImage || req.ContentType == models.GenerationBoth) {
		c.generateImage(ctx, kw, article, post.ID)
	}

	slog.Info("generation job completed",
		"keyword_id", kw.ID,
		"post_id", post.ID,
		"elapsed_ms", elapsedMS,
	)
	return &Result{KeywordID: kw.ID, PostID: post.ID, HistoryID: historyID}, false, nil
}

// generateImage runs the optional image phase. Image failures are recorded
// in history but never fail the text job.
func (c *Coordinator) generateImage(ctx context.Context, kw *models.Keyword, article *ai.Article, postID int64) {
	imgPrompt := "Imagen de cabecera para un artículo titulado: " + article.Title
	historyID, err := c.history.Begin(&kw.ID, imgPrompt, models.GenerationBoth, c.gen.ActiveModel())
	if err != nil {
		slog.Warn("image history row not opened", "keyword_id", kw.ID, "error", err)
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, c.opts.JobTimeout)
	defer cancel()
	start := time.Now()
	img, contentType, err := c.gen.GenerateImage(jobCtx, c.opts.ImageProvider, imgPrompt, c.opts.ImageSize)
	elapsedMS := time.Since(start).Milliseconds()

	if err != nil {
		c.finishFailed(historyID, err.Error(), elapsedMS)
		slog.Warn("image generation failed", "keyword_id", kw.ID, "error", err)
		return
	}

	resultData, _ := json.Marshal(map[string]any{
		"content_type": contentType,
		"bytes":        len(img),
		"size":         c.opts.ImageSize,
	})
	if err := c.history.FinishCompleted(historyID, resultData, &postID, nil, elapsedMS); err != nil {
		slog.Warn("image history row not settled", "history_id", historyID, "error", err)
	}
}

// park retires a processing keyword as failed, logging rather than failing
// when the transition is no longer possible.
func (c *Coordinator) park(id int64, reason string) {
	if _, err := c.keywords.Fail(id, reason); err != nil {
		slog.Warn("keyword not parked as failed", "keyword_id", id, "error", err)
	}
}

// reclaimAndPark re-reserves a released keyword and parks it. Used when
// cancellation lands between release and re-reserve.
func (c *Coordinator) reclaimAndPark(id int64, reason string) {
	if _, err := c.keywords.Reserve(id); err != nil {
		slog.Warn("keyword not reclaimed for parking", "keyword_id", id, "error", err)
		return
	}
	c.park(id, reason)
}

func (c *Coordinator) finishFailed(historyID int64, msg string, elapsedMS int64) {
	if err := c.history.FinishFailed(historyID, msg, elapsedMS); err != nil {
		slog.Warn("history row not settled", "history_id", historyID, "error", err)
	}
}

// sleep waits for the next backoff interval or until ctx is cancelled.
func (c *Coordinator) sleep(ctx context.Context, b retry.Backoff) error {
	d, stop := b.Next()
	if stop {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
