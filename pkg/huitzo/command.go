package huitzo

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"
)

// Handler is the unit of work mapped to one platform endpoint. It decodes its
// own arguments from raw JSON (see DecodeArgs) and returns a JSON-serializable
// result.
type Handler func(ctx context.Context, hctx *Context, raw json.RawMessage) (any, error)

// Command declares one handler plus its platform execution contract.
// Timeout and Retries are enforced by the runtime, not by the handler.
type Command struct {
	Name        string
	Namespace   string
	Description string

	Timeout time.Duration
	Retries int
	Queue   string

	Handler Handler
}

// Qualified returns "namespace/name".
func (c *Command) Qualified() string {
	return c.Namespace + "/" + c.Name
}

var nameRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Registry holds registered commands keyed by qualified name.
// Registration happens at startup; lookups afterwards, so no locking.
type Registry struct {
	commands map[string]*Command
}

func NewRegistry() *Registry {
	return &Registry{commands: map[string]*Command{}}
}

// Register adds commands, rejecting invalid names and duplicates.
func (r *Registry) Register(cmds ...*Command) error {
	for _, c := range cmds {
		if c == nil || c.Handler == nil {
			return fmt.Errorf("register: command without handler")
		}
		if !nameRe.MatchString(c.Name) {
			return fmt.Errorf("register: invalid command name %q", c.Name)
		}
		if !nameRe.MatchString(c.Namespace) {
			return fmt.Errorf("register: invalid namespace %q", c.Namespace)
		}
		q := c.Qualified()
		if _, ok := r.commands[q]; ok {
			return fmt.Errorf("register: duplicate command %q", q)
		}
		r.commands[q] = c
	}
	return nil
}

// Lookup finds a command by its qualified "namespace/name".
func (r *Registry) Lookup(qualified string) (*Command, bool) {
	c, ok := r.commands[qualified]
	return c, ok
}

// All returns every command sorted by qualified name.
func (r *Registry) All() []*Command {
	out := make([]*Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Qualified() < out[j].Qualified() })
	return out
}
