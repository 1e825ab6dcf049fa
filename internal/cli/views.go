package cli

import (
	"strconv"
	"time"

	"github.com/shaiso/pairalign/internal/domain"
	"github.com/shaiso/pairalign/internal/orchestrator"
	"github.com/shaiso/pairalign/internal/process"
)

// table — одна таблица табличного вывода.
type table struct {
	headers []string
	rows    [][]string
}

// view — результат команды. В JSON режиме сериализуется сам view,
// в табличном печатаются его таблицы.
type view interface {
	tables() []table
}

// referenceList — известные сборки и их индексы.
type referenceList []domain.ReferenceIndex

func (l referenceList) tables() []table {
	rows := make([][]string, len(l))
	for i, idx := range l {
		rows[i] = []string{idx.Build, idx.Path}
	}
	return []table{{headers: []string{"BUILD", "INDEX"}, rows: rows}}
}

// planView — план run для --dry-run.
type planView struct {
	RunID       string                 `json:"run_id"`
	WorkDir     string                 `json:"work_dir"`
	Format      domain.InputFormat     `json:"format"`
	Sample      domain.Sample          `json:"sample"`
	Primary     domain.ReferenceIndex  `json:"primary"`
	Spike       *domain.ReferenceIndex `json:"spike,omitempty"`
	Destination string                 `json:"destination,omitempty"`
	Commands    []string               `json:"commands"`

	invs []domain.Invocation
}

func newPlanView(plan *orchestrator.Plan) *planView {
	invs := plan.Invocations()
	v := &planView{
		RunID:       plan.Run.ID.String(),
		WorkDir:     plan.Run.WorkDir,
		Format:      plan.Format,
		Sample:      plan.Run.Sample,
		Primary:     plan.Primary,
		Spike:       plan.Spike,
		Destination: plan.Destination,
		Commands:    make([]string, len(invs)),
		invs:        invs,
	}
	for i := range invs {
		v.Commands[i] = invs[i].CommandLine()
	}
	return v
}

func (v *planView) tables() []table {
	rows := make([][]string, len(v.invs))
	for i, inv := range v.invs {
		rows[i] = []string{string(inv.Pass), strconv.Itoa(inv.Lane), v.Commands[i]}
	}
	return []table{{headers: []string{"PASS", "LANE", "COMMAND"}, rows: rows}}
}

// resultView — итог выполненного run.
type resultView orchestrator.Result

func (v *resultView) tables() []table {
	run := v.Run
	outputs := run.Sample.Outputs()

	rows := make([][]string, len(outputs))
	for i, name := range outputs {
		build := run.PrimaryBuild
		if i == 1 {
			build = run.SpikeBuild
		}
		placed := ""
		if i < len(v.Placed) {
			placed = v.Placed[i]
		}
		// Тот же путь, куда писал aligner
		rows[i] = []string{build, process.ResolvePath(run.WorkDir, name), placed}
	}
	return []table{{headers: []string{"BUILD", "OUTPUT", "PLACED"}, rows: rows}}
}

// runList — последние run из журнала.
type runList []domain.Run

func (l runList) tables() []table {
	rows := make([][]string, len(l))
	for i, r := range l {
		rows[i] = []string{
			r.ID.String(),
			string(r.Status),
			strconv.Itoa(len(r.Sample.Pairs)),
			r.Sample.PrimaryOutput,
			r.Sample.SpikeOutput,
			r.Duration().Round(time.Second).String(),
			r.CreatedAt.Format(time.RFC3339),
		}
	}
	return []table{{
		headers: []string{"ID", "STATUS", "PAIRS", "PRIMARY", "SPIKE", "DURATION", "CREATED"},
		rows:    rows,
	}}
}

// runDetail — run из журнала вместе с его вызовами.
type runDetail struct {
	Run         *domain.Run         `json:"run"`
	Invocations []domain.Invocation `json:"invocations"`
}

func (d *runDetail) tables() []table {
	run := d.Run
	summary := table{
		headers: []string{"ID", "STATUS", "WORK_DIR", "PRIMARY_BUILD", "SPIKE_BUILD", "ERROR"},
		rows:    [][]string{{run.ID.String(), string(run.Status), run.WorkDir, run.PrimaryBuild, run.SpikeBuild, run.Error}},
	}

	rows := make([][]string, len(d.Invocations))
	for i, inv := range d.Invocations {
		rows[i] = []string{
			string(inv.Pass),
			strconv.Itoa(inv.Lane),
			string(inv.Status),
			inv.Duration().Round(time.Second).String(),
			inv.CommandLine(),
		}
	}
	commands := table{headers: []string{"PASS", "LANE", "STATUS", "DURATION", "COMMAND"}, rows: rows}

	return []table{summary, commands}
}
