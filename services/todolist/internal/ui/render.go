package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/presenter"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/theme"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/progress"
)

const barWidth = 20

// Palette - цвета элементов доски для светлой или тёмной темы
type Palette struct {
	Title     *color.Color
	Text      *color.Color
	Dim       *color.Color
	Ongoing   *color.Color
	InProcess *color.Color
	Completed *color.Color
	Error     *color.Color
}

func PaletteFor(mode theme.Mode) Palette {
	if theme.Resolve(mode) == theme.Dark {
		return Palette{
			Title:     color.New(color.Bold, color.FgHiWhite),
			Text:      color.New(color.FgWhite),
			Dim:       color.New(color.Faint),
			Ongoing:   color.New(color.FgHiYellow),
			InProcess: color.New(color.FgHiCyan),
			Completed: color.New(color.FgHiGreen),
			Error:     color.New(color.Bold, color.FgHiRed),
		}
	}
	return Palette{
		Title:     color.New(color.Bold, color.FgBlack),
		Text:      color.New(color.FgBlack),
		Dim:       color.New(color.Faint),
		Ongoing:   color.New(color.FgYellow),
		InProcess: color.New(color.FgBlue),
		Completed: color.New(color.FgGreen),
		Error:     color.New(color.Bold, color.FgRed),
	}
}

type Renderer struct {
	w       io.Writer
	palette Palette
}

func NewRenderer(w io.Writer, mode theme.Mode) *Renderer {
	return &Renderer{w: w, palette: PaletteFor(mode)}
}

// Board выводит сводку по статусам и список задач с подзадачами
func (r *Renderer) Board(v presenter.View) {
	p := r.palette

	p.Title.Fprintln(r.w, "Task status")
	fmt.Fprintf(r.w, "  %s  %s  %s\n",
		p.Ongoing.Sprintf("Ongoing: %d", v.Status.Ongoing),
		p.InProcess.Sprintf("In process: %d", v.Status.InProcess),
		p.Completed.Sprintf("Completed: %d", v.Status.Completed),
	)
	fmt.Fprintln(r.w)

	if len(v.Tasks) == 0 {
		p.Dim.Fprintln(r.w, "No tasks yet. Add one with: todoctl add <title>")
		return
	}

	for i, t := range v.Tasks {
		fmt.Fprintf(r.w, "%s %s %s\n",
			p.Dim.Sprintf("%2d.", i+1),
			p.Title.Sprint(t.Title),
			p.Dim.Sprint("("+t.ID+")"),
		)
		fmt.Fprintf(r.w, "    %s %s %s\n",
			r.bucketColor(t.Bucket).Sprint(Bar(t.Percent, barWidth)),
			p.Text.Sprintf("%3.0f%%", t.Percent),
			r.bucketColor(t.Bucket).Sprint(BucketLabel(t.Bucket)),
		)
		for j, st := range t.Subtasks {
			mark, c := "[ ]", p.Text
			if st.CompletionStatus {
				mark, c = "[x]", p.Completed
			}
			fmt.Fprintf(r.w, "      %s %s %s\n",
				p.Dim.Sprintf("%d.", j+1),
				c.Sprint(mark),
				c.Sprint(st.Title),
			)
		}
	}
}

func (r *Renderer) Message(msg string) {
	r.palette.Completed.Fprintln(r.w, msg)
}

func (r *Renderer) Error(err error) {
	r.palette.Error.Fprintln(r.w, "Error: "+err.Error())
}

func (r *Renderer) bucketColor(b progress.Bucket) *color.Color {
	switch b {
	case progress.Completed:
		return r.palette.Completed
	case progress.InProcess:
		return r.palette.InProcess
	default:
		return r.palette.Ongoing
	}
}

func BucketLabel(b progress.Bucket) string {
	switch b {
	case progress.Completed:
		return "completed"
	case progress.InProcess:
		return "in process"
	default:
		return "ongoing"
	}
}

// Bar рисует полосу прогресса заданной ширины
func Bar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent/100*float64(width) + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
