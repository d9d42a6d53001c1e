package domain

// Level categorizes a single validation diagnostic.
type Level string

const (
	LevelPass Level = "PASS"
	LevelFail Level = "FAIL"
	LevelWarn Level = "WARN"
	LevelInfo Level = "INFO"
)

// Check is one validation diagnostic line.
type Check struct {
	Level  Level
	Name   string // short identifier, e.g. "manifest.version"
	Detail string // human-readable message, includes remediation on FAIL
}

// Report aggregates the checks run against one pack directory.
// Checks are independent: a failing check never stops the others.
type Report struct {
	Path   string
	Checks []Check
}

func (r *Report) Pass(name, detail string) { r.add(LevelPass, name, detail) }
func (r *Report) Fail(name, detail string) { r.add(LevelFail, name, detail) }
func (r *Report) Warn(name, detail string) { r.add(LevelWarn, name, detail) }
func (r *Report) Info(name, detail string) { r.add(LevelInfo, name, detail) }

func (r *Report) add(level Level, name, detail string) {
	r.Checks = append(r.Checks, Check{Level: level, Name: name, Detail: detail})
}

// HasFailures reports whether any check failed. Warnings never fail a run.
func (r *Report) HasFailures() bool {
	for _, c := range r.Checks {
		if c.Level == LevelFail {
			return true
		}
	}
	return false
}

// Counts returns the number of checks per level.
func (r *Report) Counts() (pass, fail, warn int) {
	for _, c := range r.Checks {
		switch c.Level {
		case LevelPass:
			pass++
		case LevelFail:
			fail++
		case LevelWarn:
			warn++
		}
	}
	return pass, fail, warn
}
