package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

func TestHabitCommands_Lifecycle(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun("habit", "add", "Read", "-c", "mind")
	assert.Contains(t, out, "Habit created: Read")
	e.mustRun("habit", "add", "Long", "run", "-f", "weekly", "-c", "health")

	_, err := e.run("habit", "add", "read")
	assert.ErrorIs(t, err, domain.ErrDuplicateHabit)
	_, err = e.run("habit", "add", "Swim", "-f", "hourly")
	assert.ErrorIs(t, err, domain.ErrInvalidFrequency)

	list := e.json("habit", "list")
	assert.Equal(t, float64(2), list["count"])
	assert.Equal(t, today().String(), list["date"])

	out = e.mustRun("toggle", "Read")
	assert.Contains(t, out, "saving")
	assert.Contains(t, out, "Read on "+today().String()+": done")

	streak := e.json("streak", "Read")
	assert.Equal(t, float64(1), streak["current_streak"])
	assert.Equal(t, float64(1), streak["longest_streak"])

	show := e.json("habit", "show", "Read")
	assert.Equal(t, true, show["completed_today"])
	assert.Len(t, show["days"], 14)

	e.mustRun("habit", "archive", "Long run")
	assert.Equal(t, float64(1), e.json("habit", "list")["count"])
	assert.Equal(t, float64(2), e.json("habit", "list", "-a")["count"])

	e.mustRun("habit", "delete", "Read")
	_, err = e.run("toggle", "Read")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func TestToggleCmd_TwiceUndoes(t *testing.T) {
	e := newEnv(t)
	e.mustRun("habit", "add", "Read")
	day := today().AddDays(-1).String()

	first := e.json("toggle", "Read", "-d", day)
	assert.Equal(t, true, first["completed"])
	assert.Equal(t, true, first["ok"])

	second := e.json("toggle", "Read", "-d", day)
	assert.Equal(t, false, second["completed"])

	_, err := e.run("toggle", "Read", "-d", "yesterday")
	assert.Error(t, err)
}

func TestLogCmd(t *testing.T) {
	e := newEnv(t)
	e.mustRun("habit", "add", "Read")
	e.seed("Run")

	yesterday := today().AddDays(-1).String()
	res := e.json("log", "-H", "Read", "-H", "Run", "-d", yesterday, "-d", today().String())
	assert.Equal(t, float64(4), res["total"])
	assert.Equal(t, float64(0), res["failed"])

	results := res["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, "Read", first["habit"])
	assert.Equal(t, yesterday, first["date"])

	assert.Equal(t, float64(2), e.json("streak", "Run")["current_streak"])
	// Read was created today, so yesterday does not count.
	assert.Equal(t, float64(1), e.json("streak", "Read")["current_streak"])

	_, err := e.run("log")
	assert.Error(t, err)
	_, err = e.run("log", "-H", "Swim")
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)
}

func TestAlertsCmd(t *testing.T) {
	e := newEnv(t)
	e.seed("Read")
	e.seed("Run")
	e.mustRun("log", "-H", "Read", "-H", "Run", "-d", today().AddDays(-1).String())
	e.mustRun("toggle", "Run")

	alerts := e.json("alerts")
	assert.Equal(t, float64(1), alerts["count"])
	list := alerts["alerts"].([]interface{})
	assert.Equal(t, "Habit 'Read' has a 1-day streak at risk!", list[0].(map[string]interface{})["message"])

	out := e.mustRun("alerts")
	assert.Contains(t, out, "Read")
}

func TestStatsCmd(t *testing.T) {
	e := newEnv(t)
	e.mustRun("habit", "add", "Read", "-c", "mind")
	e.mustRun("habit", "add", "Run", "-c", "health")
	e.mustRun("log", "-H", "Read", "-d", today().String(), "-d", today().AddDays(-1).String())

	from := today().AddDays(-3).String()
	report := e.json("stats", "--from", from)
	assert.Equal(t, from, report["from"])
	assert.Equal(t, today().String(), report["to"])

	board := report["leaderboard"].([]interface{})
	require.Len(t, board, 2)
	top := board[0].(map[string]interface{})
	assert.Equal(t, "Read", top["habit"])
	assert.Equal(t, 50.0, top["rate"])

	out := e.mustRun("stats", "-p", "week")
	assert.Contains(t, out, "Leaderboard")
	assert.Contains(t, out, "Heatmap")

	_, err := e.run("stats", "--from", today().String(), "--to", from)
	assert.ErrorIs(t, err, domain.ErrEmptyWindow)
	_, err = e.run("stats", "-p", "decade")
	assert.Error(t, err)
}

func TestExportCmd(t *testing.T) {
	e := newEnv(t)
	e.mustRun("habit", "add", "Read")
	e.mustRun("toggle", "Read")

	out := e.mustRun("export", "-f", "yaml", "-p", "week")
	var doc struct {
		Habits []struct {
			Name    string `yaml:"name"`
			Records []struct {
				Completed bool `yaml:"completed"`
			} `yaml:"records"`
		} `yaml:"habits"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Habits, 1)
	assert.Equal(t, "Read", doc.Habits[0].Name)
	assert.Len(t, doc.Habits[0].Records, 1)

	file := filepath.Join(e.home, "out.csv")
	e.mustRun("export", "-o", file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Read")

	_, err = e.run("export", "-f", "xml")
	assert.Error(t, err)
}

func TestImportGitCmd(t *testing.T) {
	e := newEnv(t)
	e.seed("Code")

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	// Noon local time keeps the commit on the intended calendar day.
	y := today().AddDays(-1).Time(time.Local).Add(12 * time.Hour)
	for i, when := range []time.Time{y, y.Add(time.Hour)} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "log.txt"), []byte(when.String()), 0o644))
		_, err := wt.Add("log.txt")
		require.NoError(t, err)
		sig := &object.Signature{Name: "Ada", Email: "ada@example.com", When: when}
		_, err = wt.Commit("work "+string(rune('a'+i)), &git.CommitOptions{Author: sig, Committer: sig})
		require.NoError(t, err)
	}

	res := e.json("import-git", "Code", "--repo", dir, "--author", "ada@example.com")
	assert.Equal(t, float64(2), res["commits"])
	assert.Equal(t, float64(1), res["created"])

	again := e.json("import-git", "Code", "--repo", dir)
	assert.Equal(t, float64(0), again["created"])

	assert.Equal(t, float64(1), e.json("streak", "Code", "-d", today().AddDays(-1).String())["current_streak"])
}
