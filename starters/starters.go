// Package starters bundles the tutorial Intelligence Packs shipped with the
// kit: notes CRUD, content analysis, CSV analytics, lead pipeline, and uptime
// monitoring.
package starters

import (
	"github.com/huitzo/packkit/pkg/huitzo"
	"github.com/huitzo/packkit/starters/contentkit"
	"github.com/huitzo/packkit/starters/datacruncher"
	"github.com/huitzo/packkit/starters/devopsmonitor"
	"github.com/huitzo/packkit/starters/leadengine"
	"github.com/huitzo/packkit/starters/smartnotes"
)

// All returns every starter command.
func All() []*huitzo.Command {
	var cmds []*huitzo.Command
	cmds = append(cmds, smartnotes.Commands()...)
	cmds = append(cmds, contentkit.Commands()...)
	cmds = append(cmds, datacruncher.Commands()...)
	cmds = append(cmds, leadengine.Commands()...)
	cmds = append(cmds, devopsmonitor.Commands()...)
	return cmds
}

// Register adds all starter commands to reg.
func Register(reg *huitzo.Registry) error {
	return reg.Register(All()...)
}
