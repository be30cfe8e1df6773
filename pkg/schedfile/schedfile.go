// Package schedfile loads declarative schedule definitions from a YAML file
// and keeps a running scheduler in sync with it.
//
// A schedule file is a list of named jobs, each with one or more trigger
// expressions:
//
//	jobs:
//	  - name: backup
//	    expressions: ["0 0 2 * * ?"]
//	  - name: report
//	    expressions: ["0 0 9 ? * 2F", "0 0 9 ? * 6L"]
//	    paused: true
//
// Jobs are registered under their name; callbacks are supplied by a Resolver.
// Manager.Apply upserts jobs into the scheduler (replacing trigger sets on
// existing jobs and unscheduling jobs that left the file), and
// Manager.Watch re-applies the file whenever it changes on disk.
package schedfile

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/glueckkanja/puenktlich"
	"github.com/glueckkanja/puenktlich/pkg/logx"
	"github.com/glueckkanja/puenktlich/trigger"
)

// JobDef is one entry of a schedule file.
type JobDef struct {
	Name        string   `yaml:"name"`
	Expressions []string `yaml:"expressions"`
	Paused      bool     `yaml:"paused,omitempty"`
}

// File is a parsed schedule file.
type File struct {
	Jobs []JobDef `yaml:"jobs"`
}

// Resolver maps a job name from the file to its callback.
type Resolver func(name string) (puenktlich.JobFunc, error)

// Parse decodes a schedule document. Unknown fields are rejected, names must
// be unique and non-empty, and every expression must resolve to a trigger.
func Parse(b []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("schedfile: decode: %w", err)
	}

	seen := make(map[string]bool, len(f.Jobs))
	for i, def := range f.Jobs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("schedfile: job %d has no name", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("schedfile: duplicate job name %q", name)
		}
		seen[name] = true
		if len(def.Expressions) == 0 {
			return nil, fmt.Errorf("schedfile: job %q has no expressions", name)
		}
		for _, expr := range def.Expressions {
			if _, err := trigger.New(expr); err != nil {
				return nil, fmt.Errorf("schedfile: job %q: %w", name, err)
			}
		}
		f.Jobs[i].Name = name
	}
	return &f, nil
}

// Load reads and parses a schedule file from disk.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Manager owns the binding between one schedule file and one scheduler. It
// tracks which job names it has applied so that removal only unschedules jobs
// it applied itself. A job registered by another caller under a name that
// appears in the file is not protected: Apply replaces its triggers and
// paused state like those of a managed job.
type Manager struct {
	path    string
	sched   *puenktlich.Scheduler
	resolve Resolver
	log     logx.Logger

	mu      sync.Mutex
	applied map[string]bool

	// lastHash tracks the last committed file content so editor-induced
	// duplicate write events don't re-apply an unchanged file.
	lastHash uint64
}

// NewManager binds path to s. Callbacks come from resolve.
func NewManager(path string, s *puenktlich.Scheduler, resolve Resolver) *Manager {
	return &Manager{path: path, sched: s, resolve: resolve, applied: make(map[string]bool)}
}

func (m *Manager) SetLogger(log logx.Logger) { m.log = log }

// Load reads the file and applies it to the scheduler.
func (m *Manager) Load() error {
	b, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	f, err := Parse(b)
	if err != nil {
		return err
	}
	if err := m.Apply(f); err != nil {
		return err
	}
	m.mu.Lock()
	m.lastHash = hashBytes(b)
	m.mu.Unlock()
	return nil
}

// Apply reconciles the scheduler with f: new jobs are scheduled, existing
// jobs of the same name get their trigger set and paused state replaced, and
// managed jobs absent from f are unscheduled. Callbacks for new jobs are resolved
// up front so a missing resolver entry rejects the whole file.
func (m *Manager) Apply(f *File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Resolve before mutating anything.
	callbacks := make(map[string]puenktlich.JobFunc, len(f.Jobs))
	for _, def := range f.Jobs {
		if _, err := m.sched.Job(def.Name); err == nil {
			continue
		}
		fn, err := m.resolve(def.Name)
		if err != nil {
			return fmt.Errorf("schedfile: resolve %q: %w", def.Name, err)
		}
		callbacks[def.Name] = fn
	}

	next := make(map[string]bool, len(f.Jobs))
	for _, def := range f.Jobs {
		next[def.Name] = true
		trigs := make([]trigger.Trigger, 0, len(def.Expressions))
		for _, expr := range def.Expressions {
			tr, err := trigger.New(expr)
			if err != nil {
				return fmt.Errorf("schedfile: job %q: %w", def.Name, err)
			}
			trigs = append(trigs, tr)
		}

		info, err := m.sched.Job(def.Name)
		if err != nil {
			if info, err = m.sched.ScheduleJob(def.Name, callbacks[def.Name], trigs...); err != nil {
				return fmt.Errorf("schedfile: schedule %q: %w", def.Name, err)
			}
			m.log.Debug("job added from file", logx.String("name", def.Name), logx.Int("triggers", len(trigs)))
		} else {
			ts := info.Triggers()
			ts.Clear()
			for _, tr := range trigs {
				ts.Add(tr)
			}
			m.log.Debug("job updated from file", logx.String("name", def.Name), logx.Int("triggers", len(trigs)))
		}

		if def.Paused && !info.Paused() {
			if err := info.Pause(); err != nil {
				return fmt.Errorf("schedfile: pause %q: %w", def.Name, err)
			}
		} else if !def.Paused && info.Paused() {
			info.Resume()
		}
	}

	for name := range m.applied {
		if next[name] {
			continue
		}
		if err := m.sched.UnscheduleJob(name); err != nil {
			m.log.Warn("job removal failed", logx.String("name", name), logx.Err(err))
			continue
		}
		m.log.Debug("job removed from file", logx.String("name", name))
	}
	m.applied = next
	return nil
}

func hashBytes(b []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
