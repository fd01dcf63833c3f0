package commands

import (
	"pwt/internal/config"
	"pwt/internal/discovery"
	"pwt/internal/domain"
)

// discoverWorkflows scans the test path, loads every test file and applies
// the name and tag filters.
func discoverWorkflows(cfg *config.Config, scanner *discovery.Scanner, filter *discovery.Filter) ([]domain.Workflow, error) {
	files, err := scanner.Scan(cfg.GetTestPath())
	if err != nil {
		return nil, err
	}

	loader, err := discovery.NewLoader()
	if err != nil {
		return nil, err
	}
	workflows, err := loader.LoadAll(files)
	if err != nil {
		return nil, err
	}

	return filter.Apply(workflows, cfg.Flags.NameFilter, cfg.Flags.Tags), nil
}
