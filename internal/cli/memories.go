package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"keepsake/internal/model"
)

// Timeline prints the memories grouped by year and month, newest
// first.
func (a *App) Timeline(ctx context.Context) error {
	years := a.svc.Timeline()
	if len(years) == 0 {
		fmt.Println("No memories yet. Try 'add'.")
		return nil
	}
	for _, year := range years {
		fmt.Printf("=== %d ===\n", year.Year)
		for _, month := range year.Months {
			fmt.Printf("  %s\n", month.Month)
			for _, m := range month.Memories {
				line := fmt.Sprintf("    %s  %s", m.Date, m.Title)
				if len(m.Attachments) > 0 {
					line += fmt.Sprintf(" [%d media]", len(m.Attachments))
				}
				fmt.Println(line)
			}
		}
	}
	return nil
}

// Memories prints the flat list with ids, for use with edit/del.
func (a *App) Memories(ctx context.Context) error {
	for _, m := range a.svc.Memories.Snapshot() {
		fmt.Printf("%s  %s  %s", m.ID, m.Date, m.Title)
		if m.Location != "" {
			fmt.Printf("  @ %s", m.Location)
		}
		if m.Cost > 0 {
			fmt.Printf("  (%.2f)", m.Cost)
		}
		fmt.Println()
		for _, at := range m.Attachments {
			fmt.Printf("    %s %s\n", at.Type, at.Path)
		}
	}
	return nil
}

// AddMemory interactively collects a new memory and its media files,
// uploads the files, and creates the record. The memory appears on the
// timeline immediately; the backend call settles in the background.
func (a *App) AddMemory(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	dateText, err := getSimpleText(a.reader, "Date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	date, err := model.ParseDate(dateText)
	if err != nil {
		fmt.Println("Invalid date:", err)
		return nil
	}
	description, err := getSimpleText(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		return err
	}
	location, err := getSimpleText(a.reader, "Location (optional)", os.Stdout)
	if err != nil {
		return err
	}
	cost, err := a.promptCost()
	if err != nil {
		return err
	}

	files, err := getLines(a.reader, "Media files to attach, one path per line", os.Stdout)
	if err != nil {
		return err
	}
	attachments, err := a.uploadAll(ctx, files)
	if err != nil {
		return err
	}

	memory := model.Memory{
		Title:       title,
		Description: description,
		Date:        date,
		Location:    location,
		Cost:        cost,
		Attachments: attachments,
	}
	if _, err := a.svc.Memories.Create(ctx, memory); err != nil {
		a.log.Error(ctx, "create memory failed", "error", err)
		return err
	}
	fmt.Println("Memory saved.")
	return nil
}

// EditMemory updates a memory's fields in place. Empty input keeps the
// current value; newly entered media files are added to the existing
// attachment set.
func (a *App) EditMemory(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Memory id to edit", os.Stdout)
	if err != nil {
		return err
	}
	memory, ok := a.svc.Memories.Get(id)
	if !ok {
		fmt.Println("No such memory:", id)
		return nil
	}

	if v, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s]", memory.Title), os.Stdout); err != nil {
		return err
	} else if v != "" {
		memory.Title = v
	}
	if v, err := getSimpleText(a.reader, fmt.Sprintf("Date [%s]", memory.Date), os.Stdout); err != nil {
		return err
	} else if v != "" {
		date, perr := model.ParseDate(v)
		if perr != nil {
			fmt.Println("Invalid date:", perr)
			return nil
		}
		memory.Date = date
	}
	if v, err := getSimpleText(a.reader, "Description (empty keeps current)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		memory.Description = v
	}
	if v, err := getSimpleText(a.reader, "Location (empty keeps current)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		memory.Location = v
	}

	files, err := getLines(a.reader, "Additional media files, one path per line", os.Stdout)
	if err != nil {
		return err
	}
	added, err := a.uploadAll(ctx, files)
	if err != nil {
		return err
	}
	memory.Attachments = append(memory.Attachments, added...)

	if _, err := a.svc.Memories.Update(ctx, memory); err != nil {
		a.log.Error(ctx, "update memory failed", "error", err)
		return err
	}
	fmt.Println("Memory updated.")
	return nil
}

// DeleteMemory removes a memory; its attachment records go with it.
func (a *App) DeleteMemory(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Memory id to delete", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.svc.Memories.Delete(ctx, id); err != nil {
		a.log.Error(ctx, "delete memory failed", "error", err)
		return err
	}
	fmt.Println("Memory deleted.")
	return nil
}

func (a *App) promptCost() (float64, error) {
	text, err := getSimpleText(a.reader, "Cost (optional)", os.Stdout)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}
	cost, err := strconv.ParseFloat(text, 64)
	if err != nil || cost < 0 {
		fmt.Println("Ignoring invalid cost:", text)
		return 0, nil
	}
	return cost, nil
}

// uploadAll uploads each file, offering a single backed-off retry per
// failed upload. Files the user declines to retry are skipped.
func (a *App) uploadAll(ctx context.Context, files []string) ([]model.Attachment, error) {
	var attachments []model.Attachment
	for _, file := range files {
		at, err := a.svc.UploadAttachment(ctx, file, false)
		if err != nil {
			fmt.Println("Upload failed:", err)
			answer, aerr := getSimpleText(a.reader, "Retry with backoff? (y/n)", os.Stdout)
			if aerr != nil {
				return nil, aerr
			}
			if !strings.EqualFold(answer, "y") {
				continue
			}
			at, err = a.svc.UploadAttachment(ctx, file, true)
			if err != nil {
				fmt.Println("Still failing, skipping:", err)
				continue
			}
		}
		attachments = append(attachments, at)
	}
	return attachments, nil
}
