package service

import (
	"sort"

	"sjt-studio/internal/config"
	"sjt-studio/internal/domain"
)

// FlattenOptions controls how a generated item becomes a result row.
type FlattenOptions struct {
	MaxOptions int
	// Order is config.OptionOrderReceived or config.OptionOrderLevel.
	Order string
}

// Flatten joins a generated item with its competency and attempt number.
// It returns the row and the number of options dropped beyond MaxOptions.
func Flatten(competency string, attempt int, item *domain.GeneratedItem, opts FlattenOptions) (domain.ResultRow, int) {
	row := domain.ResultRow{
		Competency: competency,
		Attempt:    attempt,
	}
	if item == nil {
		return row, 0
	}
	row.Situation = item.Situation
	row.Question = item.Question
	row.Rationale = item.Rationale

	options := make([]domain.SJTOption, len(item.Options))
	copy(options, item.Options)
	if opts.Order == config.OptionOrderLevel {
		sort.SliceStable(options, func(i, j int) bool {
			return options[i].Level.Rank() < options[j].Level.Rank()
		})
	}

	dropped := 0
	if opts.MaxOptions > 0 && len(options) > opts.MaxOptions {
		dropped = len(options) - opts.MaxOptions
		options = options[:opts.MaxOptions]
	}
	for _, o := range options {
		row.Options = append(row.Options, domain.OptionCell{
			Text:      o.Text,
			Indicator: o.IndicatorLabel(),
		})
	}
	return row, dropped
}
