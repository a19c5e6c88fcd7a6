package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/learn"
	"github.com/hpungsan/pocket/internal/library"
	"github.com/hpungsan/pocket/internal/ops"
)

// feedbackDelay is how long quiz feedback stays up before the next question.
const feedbackDelay = 900 * time.Millisecond

// studyCmd creates the study command and its notes, cards and quiz views.
func studyCmd(repo *library.Repository) *cli.Command {
	return &cli.Command{
		Name:  "study",
		Usage: "Study a capsule (defaults to the most recently created one)",
		Subcommands: []*cli.Command{
			{
				Name:      "notes",
				Usage:     "Print the notes",
				ArgsUsage: "[id]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "Only notes containing this text"},
					&cli.BoolFlag{Name: "html", Usage: "Render as HTML"},
				},
				Action: func(c *cli.Context) error {
					id, err := studyID(repo, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					format := ops.NotesFormatText
					if c.Bool("html") {
						format = ops.NotesFormatHTML
					}

					output, err := ops.Notes(repo, ops.NotesInput{ID: id, Filter: c.String("filter"), Format: format})
					if err != nil {
						return outputError(err)
					}

					fmt.Fprintf(c.App.Writer, "%s (%d of %d notes)\n\n", output.Title, len(output.Notes), output.Total)
					fmt.Fprint(c.App.Writer, output.Rendered)
					return nil
				},
			},
			{
				Name:      "cards",
				Usage:     "Flip through flashcards: n(ext) p(rev) f(lip) k(nown) u(nknown) q(uit)",
				ArgsUsage: "[id]",
				Action: func(c *cli.Context) error {
					s, err := openSession(repo, c.Args().First(), learn.ModeFlashcards)
					if err != nil {
						return outputError(err)
					}
					if err := runCards(s, c.App.Reader, c.App.Writer); err != nil {
						return outputError(err)
					}
					return nil
				},
			},
			{
				Name:      "quiz",
				Usage:     "Take the quiz: answer with a-d, q to quit",
				ArgsUsage: "[id]",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "delay", Value: feedbackDelay, Usage: "Pause after each answer"},
				},
				Action: func(c *cli.Context) error {
					s, err := openSession(repo, c.Args().First(), learn.ModeQuiz)
					if err != nil {
						return outputError(err)
					}
					if err := runQuiz(s, c.App.Reader, c.App.Writer, c.Duration("delay")); err != nil {
						return outputError(err)
					}
					return nil
				},
			},
		},
	}
}

// studyID returns id, or the most recently created capsule when id is empty.
func studyID(repo *library.Repository, id string) (string, error) {
	if id = strings.TrimSpace(id); id != "" {
		return id, nil
	}
	latest, err := ops.Latest(repo)
	if err != nil {
		return "", err
	}
	if latest.Item == nil {
		return "", errors.NewInvalidRequest("library is empty; save a capsule first")
	}
	return latest.Item.ID, nil
}

func openSession(repo *library.Repository, id string, mode learn.Mode) (*learn.Session, error) {
	id, err := studyID(repo, id)
	if err != nil {
		return nil, err
	}
	s := learn.NewSession(repo, repo.Progress(), slog.Default())
	if err := s.Open(id); err != nil {
		return nil, err
	}
	if err := s.SetMode(mode); err != nil {
		return nil, err
	}
	return s, nil
}

// runCards reads one command per line until q or end of input.
func runCards(s *learn.Session, r io.Reader, w io.Writer) error {
	fmt.Fprintf(w, "%s: flashcards\n", s.Capsule().Meta.Title)

	view, err := s.Card()
	if err != nil {
		return err
	}
	if view.Empty {
		fmt.Fprintln(w, "No flashcards in this capsule.")
		return nil
	}
	printCard(w, view)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		var err error
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "next", "":
			view, err = s.Next()
		case "p", "prev":
			view, err = s.Prev()
		case "f", "flip":
			view, err = s.Flip()
		case "k", "known":
			view, err = s.MarkKnown()
		case "u", "unknown":
			view, err = s.MarkUnknown()
		case "q", "quit":
			return nil
		default:
			fmt.Fprintln(w, "Commands: n(ext) p(rev) f(lip) k(nown) u(nknown) q(uit)")
			continue
		}
		if err != nil {
			return err
		}
		printCard(w, view)
	}
	return scanner.Err()
}

func printCard(w io.Writer, v learn.CardView) {
	mark := ""
	if v.Known {
		mark = " [known]"
	}
	fmt.Fprintf(w, "\nCard %d/%d%s (known %d/%d)\n", v.Index+1, v.Total, mark, v.KnownCount, v.Total)
	fmt.Fprintf(w, "  Q: %s\n", v.Front)
	if v.Revealed {
		fmt.Fprintf(w, "  A: %s\n", v.Back)
	}
}

// runQuiz asks each question in turn and prints the score at the end.
// Feedback stays up for delay before the next question.
func runQuiz(s *learn.Session, r io.Reader, w io.Writer, delay time.Duration) error {
	fmt.Fprintf(w, "%s: quiz (best score %d%%)\n", s.Capsule().Meta.Title, s.BestScore())

	view, err := s.Question()
	if err != nil {
		return err
	}
	if view.State == learn.QuizEmpty {
		fmt.Fprintln(w, "No quiz questions in this capsule.")
		return nil
	}
	printQuestion(w, view)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "q" || line == "quit" {
			return nil
		}
		choice, ok := parseChoice(line)
		if !ok {
			fmt.Fprintln(w, "Answer with a, b, c or d (q to quit).")
			continue
		}

		fb, err := s.Answer(choice)
		if err != nil {
			return err
		}
		printFeedback(w, fb, view.Choices)
		time.Sleep(delay)

		if view, err = s.Advance(); err != nil {
			return err
		}
		if view.State == learn.QuizFinished {
			printResult(w, view.Result)
			return nil
		}
		printQuestion(w, view)
	}
	return scanner.Err()
}

// parseChoice maps a-d (or 1-4) to a choice index.
func parseChoice(s string) (int, bool) {
	if len(s) != 1 {
		return 0, false
	}
	switch c := s[0]; {
	case c >= 'a' && c < 'a'+capsule.ChoiceCount:
		return int(c - 'a'), true
	case c >= '1' && c < '1'+capsule.ChoiceCount:
		return int(c - '1'), true
	}
	return 0, false
}

func choiceLabel(i int) string {
	return string(rune('a' + i))
}

func printQuestion(w io.Writer, v learn.QuestionView) {
	fmt.Fprintf(w, "\nQuestion %d/%d: %s\n", v.Number, v.Total, v.Q)
	for i, choice := range v.Choices {
		fmt.Fprintf(w, "  %s) %s\n", choiceLabel(i), choice)
	}
}

func printFeedback(w io.Writer, fb learn.Feedback, choices [capsule.ChoiceCount]string) {
	if fb.Correct {
		fmt.Fprintln(w, "Correct!")
	} else {
		fmt.Fprintf(w, "Wrong. Answer: %s) %s\n", choiceLabel(fb.CorrectChoice), choices[fb.CorrectChoice])
	}
	if fb.Explain != "" {
		fmt.Fprintf(w, "  %s\n", fb.Explain)
	}
}

func printResult(w io.Writer, res *learn.Result) {
	fmt.Fprintf(w, "\nScore: %d%% (%d/%d correct)\n", res.Score, res.CorrectCount, res.Total)
	if res.NewBest {
		fmt.Fprintln(w, "New best score!")
	} else {
		fmt.Fprintf(w, "Best score: %d%%\n", res.BestScore)
	}
}
