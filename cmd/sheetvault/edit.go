package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/arkhamdesk/sheetvault/internal/sheet/app"
	"github.com/arkhamdesk/sheetvault/internal/sheet/bus"
	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
	"github.com/arkhamdesk/sheetvault/internal/sheet/store"
	"github.com/urfave/cli/v2"
)

// runEdit is the interactive session: one live record in memory, every
// accepted edit notifies the autosave scheduler, and save status arrives
// over the event bus rather than from the storage call site.
func runEdit(c *cli.Context, a *app.Application) error {
	rec, err := loadOrCreate(c, a)
	if err != nil {
		return err
	}

	// The live record. The scheduler snapshots it from a timer goroutine,
	// so access goes through the mutex.
	var mu sync.Mutex
	snapshot := func() domain.CharacterRecord {
		mu.Lock()
		defer mu.Unlock()
		return rec.Clone()
	}

	scheduler := a.NewScheduler(snapshot)

	events := a.Events()
	events.On(bus.EventSaveSuccess, func(p any) {
		if id, ok := p.(string); ok {
			mu.Lock()
			// First save of a new sheet assigns identity and timestamps on
			// the service side; adopt them so follow-up saves update the same
			// record and keep its original creation time.
			if rec.ID == "" {
				rec.ID = id
				if saved, err := a.Characters().Load(c.Context, id); err == nil {
					rec.Created = saved.Created
					rec.Version = saved.Version
				}
			}
			mu.Unlock()
		}
		fmt.Fprintln(os.Stderr, "saved")
	})
	events.On(bus.EventSaveError, func(p any) {
		fmt.Fprintf(os.Stderr, "save failed: %v (edits kept in memory)\n", p)
	})

	fmt.Println("editing — 'field value' to set, 'show' to print, 'quit' to finish")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit":
			scheduler.Flush()
			return scanner.Err()
		case "show":
			mu.Lock()
			printSheet(rec)
			mu.Unlock()
			continue
		}

		field, value, _ := strings.Cut(line, " ")
		mu.Lock()
		err := applyField(&rec, field, value)
		mu.Unlock()
		if err != nil {
			fmt.Fprintf(os.Stderr, "rejected: %v\n", err)
			continue
		}
		scheduler.Notify()
	}

	scheduler.Flush()
	return scanner.Err()
}

func loadOrCreate(c *cli.Context, a *app.Application) (domain.CharacterRecord, error) {
	id := c.Args().First()
	if id == "" {
		// Fall back to the active sheet; a brand new record if none.
		active, err := a.Characters().Active(c.Context)
		if errors.Is(err, store.ErrNotFound) {
			return domain.CharacterRecord{}, nil
		}
		if err != nil {
			return domain.CharacterRecord{}, err
		}
		id = active
	}
	return a.Characters().Load(c.Context, id)
}
