package export

import (
	"github.com/backmassage/arc2ipa/internal/config"
	"github.com/backmassage/arc2ipa/internal/naming"
)

// Builder creates Jobs for one batch. The options payload is resolved once
// per batch; destinations come from the shared resolver so they stay
// pairwise disjoint.
type Builder struct {
	method   config.Method
	options  Options
	resolver *naming.CollisionResolver
}

// NewBuilder resolves the options variant for cfg.Method.
func NewBuilder(cfg *config.Config, resolver *naming.CollisionResolver) (*Builder, error) {
	opts, err := NewOptions(cfg.Method, cfg.SigningStyle, cfg.TeamID)
	if err != nil {
		return nil, err
	}
	return &Builder{method: cfg.Method, options: opts, resolver: resolver}, nil
}

// Build returns the job for the archive at archivePath. index is the
// archive's 1-based position in discovery order.
func (b *Builder) Build(index int, archivePath string) Job {
	name := naming.DestinationName(archivePath)
	return Job{
		Index:          index,
		SourcePath:     archivePath,
		DestinationDir: b.resolver.Resolve(archivePath, name),
		Method:         b.method,
		Options:        b.options,
	}
}
