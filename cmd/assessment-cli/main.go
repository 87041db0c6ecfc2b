// cmd/assessment-cli/main.go

// assessment-cli runs a questionnaire session from the terminal against a
// running assessment server. Edits are debounced to the server and shadowed
// into a local Redis mirror, so a crashed session can be resumed even while
// the server is unreachable.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"assessment-service/internal/autosave"
	"assessment-service/internal/common/logger"
	"assessment-service/internal/mirror"
	"assessment-service/internal/models"
	"assessment-service/internal/session"
	"assessment-service/pkg/client"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "Assessment server base URL")
	assessmentID := flag.String("assessment", "", "Assessment ID to open (required)")
	email := flag.String("email", "", "Login email")
	password := flag.String("password", "", "Login password")
	fallbackType := flag.String("type", "EXPLORATORY", "Questionnaire type used when restoring offline from the mirror")
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for the local backup mirror (empty disables it)")
	debounce := flag.Duration("debounce", 30*time.Second, "Quiet period before a pending edit is saved")
	flag.Parse()

	if *assessmentID == "" {
		fmt.Fprintln(os.Stderr, "-assessment is required")
		flag.Usage()
		os.Exit(1)
	}

	log := logger.NewStructured("warn", "console")
	ctx := context.Background()

	c := client.New(*server)
	if *email != "" {
		if err := c.Login(ctx, *email, *password); err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
	}

	var m mirror.Mirror
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: redis unavailable, running without backup mirror: %v\n", err)
		} else {
			m = mirror.NewRedisMirror(rdb, 0)
		}
	}

	cfg := session.Config{
		AssessmentID: *assessmentID,
		FallbackType: models.AssessmentType(*fallbackType),
		Autosave: autosave.Config{
			Debounce:   *debounce,
			MaxRetries: 3,
			RetryDelay: time.Second,
		},
	}

	s, err := session.New(ctx, cfg, c, m, nil, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open session: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if s.Restored() {
		fmt.Println("Server unreachable. Session restored from the local backup; answers will sync once saves succeed.")
	}

	fmt.Printf("Opened assessment %s. Type 'help' for commands.\n\n", *assessmentID)
	printGroup(s)
	repl(ctx, s)
}

func repl(ctx context.Context, s *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			printHelp()
		case "show":
			printGroup(s)
		case "answer":
			if len(fields) < 3 {
				fmt.Println("usage: answer <question-id> <value>")
				continue
			}
			answer(ctx, s, fields[1], strings.Join(fields[2:], " "))
		case "clear":
			if len(fields) != 2 {
				fmt.Println("usage: clear <question-id>")
				continue
			}
			clearAnswer(ctx, s, fields[1])
		case "next":
			verrs := s.Next(ctx)
			if len(verrs) > 0 {
				for _, v := range verrs {
					fmt.Printf("  %s: %s\n", v.QuestionID, v.Message)
				}
				continue
			}
			printGroup(s)
		case "prev":
			s.Previous()
			printGroup(s)
		case "goto":
			if len(fields) != 2 {
				fmt.Println("usage: goto <step>")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || !s.JumpTo(n) {
				fmt.Println("step not reachable")
				continue
			}
			printGroup(s)
		case "save":
			res := s.SaveNow(ctx)
			if res.Err != nil {
				fmt.Printf("save failed after %d attempts: %v\n", res.Attempts, res.Err)
			} else {
				fmt.Printf("saved (%s)\n", res.Status)
			}
		case "status":
			fmt.Printf("step %d, progress %d%%, save state %s, unsaved changes: %t\n",
				s.Step(), s.Progress(), s.SaveStatus(), s.HasUnsavedChanges())
		case "complete":
			a, err := s.Complete(ctx)
			if err != nil {
				fmt.Printf("cannot complete: %v\n", err)
				continue
			}
			fmt.Printf("assessment %s completed at %s\n", a.ID, a.CompletedAt.Format(time.RFC3339))
			return
		case "quit", "exit":
			if s.HasUnsavedChanges() {
				fmt.Println("flushing unsaved changes...")
				if res := s.SaveNow(ctx); res.Err != nil {
					fmt.Printf("flush failed, the local backup keeps your answers: %v\n", res.Err)
				}
			}
			return
		default:
			fmt.Printf("unknown command %q, type 'help'\n", fields[0])
		}
	}
}

func answer(ctx context.Context, s *session.Session, questionID, raw string) {
	g := s.CurrentGroup()
	if g == nil {
		fmt.Println("on the review step, use 'prev' to go back and edit")
		return
	}

	var q *models.Question
	for i := range g.Questions {
		if g.Questions[i].ID == questionID {
			q = &g.Questions[i]
			break
		}
	}
	if q == nil {
		fmt.Printf("no question %q on this step\n", questionID)
		return
	}

	value, err := parseAnswer(q.Type, raw)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := s.SetAnswer(ctx, g.ID, questionID, value); err != nil {
		fmt.Println(err)
	}
}

func clearAnswer(ctx context.Context, s *session.Session, questionID string) {
	g := s.CurrentGroup()
	if g == nil {
		fmt.Println("on the review step, use 'prev' to go back and edit")
		return
	}
	if err := s.ClearAnswer(ctx, g.ID, questionID); err != nil {
		fmt.Println(err)
	}
}

// parseAnswer converts terminal input to the typed answer the question
// expects. Multi-valued inputs are comma separated.
func parseAnswer(t models.QuestionType, raw string) (models.AnswerValue, error) {
	switch t {
	case models.QuestionNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.AnswerValue{}, fmt.Errorf("expected a number, got %q", raw)
		}
		return models.NumberAnswer(n), nil
	case models.QuestionMultiselect, models.QuestionCheckbox:
		parts := strings.Split(raw, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if v := strings.TrimSpace(p); v != "" {
				values = append(values, v)
			}
		}
		return models.ListAnswer(values...), nil
	default:
		return models.StringAnswer(raw), nil
	}
}

func printGroup(s *session.Session) {
	g := s.CurrentGroup()
	if g == nil {
		printReview(s)
		return
	}

	responses := s.Responses()
	fmt.Printf("\nStep %d: %s\n", g.Step, g.Title)
	for _, q := range g.Questions {
		marker := " "
		if q.Required {
			marker = "*"
		}
		current := ""
		if v, ok := responses.Get(g.ID, q.ID); ok && v.IsAnswered() {
			current = " = " + v.String()
		}
		fmt.Printf("  [%s] %s (%s)%s\n", marker, q.ID, q.Type, current)
		if len(q.Options) > 0 {
			opts := make([]string, len(q.Options))
			for i, o := range q.Options {
				opts[i] = o.Value
			}
			fmt.Printf("      options: %s\n", strings.Join(opts, ", "))
		}
	}
	fmt.Println()
}

func printReview(s *session.Session) {
	fmt.Printf("\nReview (progress %d%%)\n", s.Progress())
	responses := s.Responses()
	for gid, group := range responses {
		if comp, ok := s.GroupCompletion(gid); ok {
			fmt.Printf("  %s: %d/%d answered\n", gid, comp.Answered, comp.Total)
		}
		for qid, v := range group {
			if v.IsAnswered() {
				fmt.Printf("    %s = %s\n", qid, v.String())
			}
		}
	}
	fmt.Println("\nType 'complete' to submit or 'prev' to keep editing.")
}

func printHelp() {
	fmt.Println(`commands:
  show                       redisplay the current step
  answer <question-id> <v>   record an answer (comma separated for multi-value)
  clear <question-id>        remove an answer
  next                       validate this step and move forward
  prev                       move back one step (never blocked)
  goto <step>                jump to a visited step
  save                       flush pending edits immediately
  status                     show step, progress and save state
  complete                   submit the finished assessment
  quit                       flush and exit`)
}
