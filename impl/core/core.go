package core

import (
	"log/slog"

	"SevaFlow/bot/flow"
	"SevaFlow/bot/whatsapp"
	"SevaFlow/internal/cache"
	repository "SevaFlow/internal/database"
	"SevaFlow/internal/lib/sl"
)

// Core wires the engine, stores and sender behind the interfaces the HTTP
// handlers declare. Collaborators are injected with setters so a partial
// deployment (no redis, no mongo) degrades instead of failing to start.
type Core struct {
	log *slog.Logger

	repo      *repository.MongoDB
	flowCache *cache.FlowCache
	engine    *flow.Engine
	sender    *whatsapp.Sender
	issuer    *flow.Issuer

	helpDefault string
}

func New(log *slog.Logger) *Core {
	return &Core{
		log: log.With(sl.Module("core")),
	}
}

func (c *Core) SetRepository(repo *repository.MongoDB) {
	c.repo = repo
}

func (c *Core) SetFlowCache(fc *cache.FlowCache) {
	c.flowCache = fc
}

func (c *Core) SetEngine(e *flow.Engine) {
	c.engine = e
}

func (c *Core) SetSender(s *whatsapp.Sender) {
	c.sender = s
}

func (c *Core) SetIssuer(i *flow.Issuer) {
	c.issuer = i
}

func (c *Core) SetHelpDefault(msg string) {
	c.helpDefault = msg
}

// invalidateFlows drops the tenant's cached flow list after a write.
func (c *Core) invalidateFlows(companyID string) {
	if c.flowCache != nil {
		c.flowCache.Invalidate(companyID)
	}
}
