package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"keepsake/internal/model"
)

// Bucket handles the bucket-list subcommands:
//
//	bucket                     list items in display order
//	bucket add <text>          add a new item
//	bucket toggle <id>         flip an item's completed flag
//	bucket move <id> <index>   reposition an item (0-based)
//	bucket del <id>            remove an item
func (a *App) Bucket(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.bucketList()
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			fmt.Println("Usage: bucket add <text>")
			return nil
		}
		return a.bucketAdd(ctx, strings.Join(args[1:], " "))
	case "toggle":
		if len(args) != 2 {
			fmt.Println("Usage: bucket toggle <id>")
			return nil
		}
		return a.bucketToggle(ctx, args[1])
	case "move":
		if len(args) != 3 {
			fmt.Println("Usage: bucket move <id> <index>")
			return nil
		}
		index, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Println("Index must be a number:", args[2])
			return nil
		}
		return a.bucketMove(ctx, args[1], index)
	case "del":
		if len(args) != 2 {
			fmt.Println("Usage: bucket del <id>")
			return nil
		}
		return a.bucketDelete(ctx, args[1])
	default:
		fmt.Println("Unknown bucket subcommand:", args[0])
		return nil
	}
}

func (a *App) bucketList() error {
	items := a.svc.Bucket.Snapshot()
	if len(items) == 0 {
		fmt.Println("The bucket list is empty. Try 'bucket add <text>'.")
		return nil
	}
	for i, item := range items {
		mark := " "
		if item.Completed {
			mark = "x"
		}
		fmt.Printf("%2d. [%s] %s  (%s)\n", i, mark, item.Text, item.ID)
	}
	return nil
}

func (a *App) bucketAdd(ctx context.Context, text string) error {
	if _, err := a.svc.Bucket.Create(ctx, model.BucketItem{Text: text}); err != nil {
		a.log.Error(ctx, "add bucket item failed", "error", err)
		return err
	}
	return a.bucketList()
}

func (a *App) bucketToggle(ctx context.Context, id string) error {
	item, ok := a.svc.Bucket.Get(id)
	if !ok {
		fmt.Println("No such item:", id)
		return nil
	}
	item.Completed = !item.Completed
	if _, err := a.svc.Bucket.Update(ctx, item); err != nil {
		a.log.Error(ctx, "toggle bucket item failed", "error", err)
		return err
	}
	return a.bucketList()
}

func (a *App) bucketMove(ctx context.Context, id string, index int) error {
	if err := a.svc.Bucket.Move(ctx, id, index); err != nil {
		a.log.Error(ctx, "move bucket item failed", "error", err)
		return err
	}
	return a.bucketList()
}

func (a *App) bucketDelete(ctx context.Context, id string) error {
	if err := a.svc.Bucket.Delete(ctx, id); err != nil {
		a.log.Error(ctx, "delete bucket item failed", "error", err)
		return err
	}
	return a.bucketList()
}
