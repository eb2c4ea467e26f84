package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arborist/pkg/cache"
	"github.com/matzehuels/arborist/pkg/params"
	"github.com/matzehuels/arborist/pkg/pipeline"
	"github.com/matzehuels/arborist/pkg/render/layout"
	"github.com/matzehuels/arborist/pkg/tree"
)

var (
	exploreTreeStyle = lipgloss.NewStyle().Foreground(colorGreen)
	exploreHelpStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var depth, left, right string

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse random trees in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			res := cfg.Resolver().Resolve(depth, left, right)
			for _, field := range res.Substituted {
				printWarning("invalid %s, using default", field)
			}

			// The terminal belongs to the program; pipeline logs would tear the view.
			runner := pipeline.NewRunner(cache.NewNullCache(), nil, log.New(io.Discard))
			defer runner.Close()

			m := newExploreModel(commandContext(cmd), runner, res.Params)
			m.geometry = cfg.Geometry
			_, err = tea.NewProgram(m, tea.WithContext(commandContext(cmd))).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&depth, "depth", "d", "", "initial number of levels")
	cmd.Flags().StringVar(&left, "left", "", "left child probability")
	cmd.Flags().StringVar(&right, "right", "", "right child probability")

	return cmd
}

// exploreDepthLimit keeps the text drawing within a terminal.
const exploreDepthLimit = 6

// probStep is the increment applied by the probability keys.
const probStep = 0.1

// treeMsg carries a finished drawing back to the model.
type treeMsg struct {
	seed  uint64
	text  string
	nodes int
	err   error
}

// exploreModel is the bubbletea model behind `arborist explore`.
type exploreModel struct {
	ctx      context.Context
	runner   *pipeline.Runner
	params   params.Params
	geometry layout.Geometry
	consume  bool
	seed     uint64
	nextSeed func() uint64

	text  string
	nodes int
	err   error
}

func newExploreModel(ctx context.Context, runner *pipeline.Runner, p params.Params) exploreModel {
	if p.Depth > exploreDepthLimit {
		p.Depth = exploreDepthLimit
	}
	rng := tree.NewRandomSource()
	return exploreModel{
		ctx:      ctx,
		runner:   runner,
		params:   p,
		seed:     rng.Uint64(),
		nextSeed: rng.Uint64,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return m.draw()
}

// draw renders the current parameters and seed as text.
func (m exploreModel) draw() tea.Cmd {
	ctx, runner, seed := m.ctx, m.runner, m.seed
	opts := pipeline.Options{
		Params:          m.params,
		Seed:            &seed,
		ConsumeOnAttach: m.consume,
		Geometry:        m.geometry,
		Formats:         []string{pipeline.FormatText},
	}
	return func() tea.Msg {
		res, err := runner.Execute(ctx, opts)
		if err != nil {
			return treeMsg{seed: seed, err: err}
		}
		return treeMsg{
			seed:  seed,
			text:  string(res.Artifacts[pipeline.FormatText]),
			nodes: res.Stats.NodeCount,
		}
	}
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case treeMsg:
		if msg.seed != m.seed {
			return m, nil // stale
		}
		m.text, m.nodes, m.err = msg.text, msg.nodes, msg.err
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r", " ", "enter":
			m.seed = m.nextSeed()
		case "+", "=":
			if m.params.Depth >= exploreDepthLimit {
				return m, nil
			}
			m.params.Depth++
		case "-", "_":
			if m.params.Depth <= 1 {
				return m, nil
			}
			m.params.Depth--
		case "[":
			m.params.LeftProb = stepProb(m.params.LeftProb, -probStep)
		case "]":
			m.params.LeftProb = stepProb(m.params.LeftProb, probStep)
		case "{":
			m.params.RightProb = stepProb(m.params.RightProb, -probStep)
		case "}":
			m.params.RightProb = stepProb(m.params.RightProb, probStep)
		case "c":
			m.consume = !m.consume
		default:
			return m, nil
		}
		return m, m.draw()
	}
	return m, nil
}

// stepProb moves p by delta, clamped to [0, 1] and rounded to one decimal.
func stepProb(p, delta float64) float64 {
	p = float64(int((p+delta)*10+0.5)) / 10
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Arborist"))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(StyleWarning.Render(m.err.Error()))
	case m.text == "":
		b.WriteString(exploreHelpStyle.Render("drawing..."))
	default:
		b.WriteString(exploreTreeStyle.Render(strings.TrimRight(m.text, "\n")))
	}
	b.WriteString("\n\n")

	mode := "always"
	if m.consume {
		mode = "on attach"
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("depth", "left", "right", "consume", "nodes", "seed").
		Row(
			strconv.Itoa(m.params.Depth),
			strconv.FormatFloat(m.params.LeftProb, 'g', -1, 64),
			strconv.FormatFloat(m.params.RightProb, 'g', -1, 64),
			mode,
			strconv.Itoa(m.nodes),
			fmt.Sprint(m.seed),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(exploreHelpStyle.Render("r new tree  +/- depth  [/] left  {/} right  c consume mode  q quit"))
	return b.String()
}
