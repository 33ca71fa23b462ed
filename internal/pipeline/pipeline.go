// Package pipeline runs the prospection loop: discover candidates,
// filter them, enrich one at a time, score and persist.
package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/prospect-agent/internal/adapter/outreach"
	"github.com/octobees/prospect-agent/internal/config"
	"github.com/octobees/prospect-agent/internal/entity"
	"github.com/octobees/prospect-agent/internal/repository"
	"github.com/octobees/prospect-agent/internal/scoring"
)

// Source is one discovery backend. Discover returns raw candidates
// for a search query.
type Source struct {
	Name     string
	Discover func(ctx context.Context, query string, max int) ([]entity.Candidate, error)
}

// RelevanceFilter rejects candidates that can never become prospects.
type RelevanceFilter interface {
	IsIrrelevant(name, website string) bool
}

// Enricher fills a prospect from the enrichment sources.
type Enricher interface {
	Enrich(ctx context.Context, p *entity.Prospect)
}

// Analyzer produces the relevance analysis used in the message.
type Analyzer interface {
	AnalyzeRelevance(ctx context.Context, p *entity.Prospect, serviceOffered, valueProposition string) (outreach.Analysis, error)
}

// Agent is the single-threaded prospection worker. Discovered
// candidates queue up in memory and are processed one by one with a
// fixed pause in between, so the external APIs see a steady, low rate.
type Agent struct {
	campaign config.Campaign
	sources  []Source
	filter   RelevanceFilter
	enricher Enricher
	scorer   *scoring.Engine
	analyzer Analyzer
	repo     repository.ProspectsRepository
	logger   *zap.Logger

	queue     []entity.Candidate
	refreshCh chan struct{}
}

// New assembles an agent.
func New(campaign config.Campaign, sources []Source, filter RelevanceFilter, enricher Enricher, scorer *scoring.Engine, analyzer Analyzer, repo repository.ProspectsRepository, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		campaign:  campaign,
		sources:   sources,
		filter:    filter,
		enricher:  enricher,
		scorer:    scorer,
		analyzer:  analyzer,
		repo:      repo,
		logger:    logger,
		refreshCh: make(chan struct{}, 1),
	}
}

// TriggerRefresh asks the agent to run discovery at the next pause.
// It never blocks; a refresh already pending is enough.
func (a *Agent) TriggerRefresh() {
	select {
	case a.refreshCh <- struct{}{}:
	default:
	}
}

// Run processes candidates until the context is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("prospection agent started",
		zap.String("city", a.campaign.City),
		zap.String("country", a.campaign.Country),
		zap.String("sector", a.campaign.Sector),
		zap.Duration("process_interval", a.campaign.ProcessInterval),
	)

	for {
		if ctx.Err() != nil {
			return nil
		}

		if len(a.queue) == 0 {
			added := a.refresh(ctx)
			if added == 0 {
				a.logger.Info("discovery yielded nothing, backing off",
					zap.Duration("backoff", a.campaign.RefreshBackoff))
				if !a.pause(ctx, a.campaign.RefreshBackoff) {
					return nil
				}
				continue
			}
		}

		candidate := a.queue[0]
		a.queue = a.queue[1:]
		a.process(ctx, candidate)

		if !a.pause(ctx, a.campaign.ProcessInterval) {
			return nil
		}
	}
}

// refresh runs every discovery source over the campaign queries and
// enqueues the candidates that pass filtering and deduplication.
// Returns the number of candidates added.
func (a *Agent) refresh(ctx context.Context) int {
	queries := a.queries()
	seen := make(map[string]struct{}, len(a.queue))
	for _, queued := range a.queue {
		seen[dedupKey(queued.Name, queued.WebsiteOrEmpty())] = struct{}{}
	}

	added := 0
	for _, source := range a.sources {
		for _, query := range queries {
			if ctx.Err() != nil {
				return added
			}
			candidates, err := source.Discover(ctx, query, a.campaign.ResultCount)
			if err != nil {
				a.logger.Warn("discovery failed",
					zap.String("source", source.Name),
					zap.String("query", query),
					zap.Error(err))
				continue
			}
			for _, candidate := range candidates {
				if a.filter.IsIrrelevant(candidate.Name, candidate.WebsiteOrEmpty()) {
					a.logger.Debug("candidate filtered out", zap.String("name", candidate.Name))
					continue
				}
				key := dedupKey(candidate.Name, candidate.WebsiteOrEmpty())
				if _, dup := seen[key]; dup {
					continue
				}
				exists, err := a.repo.Exists(ctx, candidate.Name, candidate.WebsiteOrEmpty())
				if err != nil {
					a.logger.Warn("existence check failed", zap.String("name", candidate.Name), zap.Error(err))
				} else if exists {
					a.logger.Debug("candidate already stored", zap.String("name", candidate.Name))
					continue
				}
				seen[key] = struct{}{}
				a.queue = append(a.queue, candidate)
				added++
			}
		}
	}

	a.logger.Info("discovery refresh finished",
		zap.Int("added", added),
		zap.Int("queued", len(a.queue)))
	return added
}

// process enriches, scores and persists a single candidate. Every
// failure is contained here so the loop survives any one item.
func (a *Agent) process(ctx context.Context, candidate entity.Candidate) {
	logger := a.logger.With(zap.String("prospect", candidate.Name), zap.String("source", candidate.Source))
	logger.Info("processing candidate")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("processing panicked", zap.Any("panic", r))
		}
	}()

	prospect := entity.FromCandidate(candidate)
	a.enricher.Enrich(ctx, prospect)

	if !prospect.HasContact() {
		logger.Info("discarded, no contact channel found")
		return
	}

	prospect.Score = a.scorer.Score(prospect)

	analysis, err := a.analyzer.AnalyzeRelevance(ctx, prospect, a.campaign.ServiceOffered, a.campaign.ValueProposition)
	if err != nil {
		// The analyzer always hands back a usable fallback.
		logger.Warn("relevance analysis degraded", zap.Error(err))
	}
	prospect.HighlightedPoint = analysis.HighlightedPoint
	prospect.Reason = analysis.Reason
	prospect.Proposal = analysis.Proposal

	a.composeMessage(prospect, analysis)

	now := time.Now()
	prospect.Status = entity.StatusProcessed
	prospect.ProcessedAt = &now

	id, err := a.repo.Upsert(ctx, prospect)
	if err != nil {
		logger.Error("persist failed", zap.Error(err))
		return
	}
	if id == nil {
		logger.Info("already stored, skipped")
		return
	}
	logger.Info("prospect stored",
		zap.String("id", id.String()),
		zap.Int("score", prospect.Score),
		zap.String("category", scoring.Category(prospect.Score)))

	a.logStats(ctx)
}

// composeMessage picks a template matching the candidate's business
// and renders it. Without any template a minimal message is built
// from the analysis, so a stored prospect always has one.
func (a *Agent) composeMessage(p *entity.Prospect, analysis outreach.Analysis) {
	template := a.campaign.TemplateFor(templateMatchText(p))
	if template.Body != "" {
		if template.ID != "" {
			id := template.ID
			p.TemplateID = &id
		}
		p.Message = outreach.RenderMessage(template.Body, p, analysis, a.campaign.ValueProposition)
		return
	}
	p.Message = strings.TrimSpace("Bonjour,\n\n" + analysis.Reason + ". " + analysis.Proposal)
}

func (a *Agent) logStats(ctx context.Context) {
	stats, err := a.repo.Stats(ctx)
	if err != nil {
		a.logger.Warn("stats unavailable", zap.Error(err))
		return
	}
	a.logger.Info("pipeline stats",
		zap.Int("total", stats.Total),
		zap.Int("with_email", stats.WithEmail),
		zap.Int("processed", stats.Processed))
}

// queries builds the discovery searches from the campaign targets.
func (a *Agent) queries() []string {
	var queries []string
	seen := make(map[string]struct{})
	add := func(q string) {
		q = strings.Join(strings.Fields(q), " ")
		if q == "" {
			return
		}
		if _, dup := seen[q]; dup {
			return
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}

	add(a.campaign.Sector + " " + a.campaign.City)
	for _, target := range a.campaign.Targets {
		add(target + " " + a.campaign.City)
	}
	return queries
}

// pause sleeps for d, waking early for a refresh trigger. Returns
// false when the context was cancelled.
func (a *Agent) pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-a.refreshCh:
		a.logger.Info("refresh requested")
		a.refresh(ctx)
		return true
	}
}

func dedupKey(name, website string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(website))
}

func templateMatchText(p *entity.Prospect) string {
	parts := []string{p.Name}
	if p.Description != nil {
		parts = append(parts, *p.Description)
	}
	if p.Industry != nil {
		parts = append(parts, *p.Industry)
	}
	return strings.Join(parts, " ")
}
