package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/arbor/internal/app"
	"github.com/yungbote/arbor/internal/http/middleware"
	"github.com/yungbote/arbor/internal/services"
)

func main() {
	var (
		roots       int
		depth       int
		fanout      int
		concurrency int
		owner       string
		prefix      string
		printToken  bool
	)
	flag.IntVar(&roots, "roots", 3, "number of root folders to create")
	flag.IntVar(&depth, "depth", 3, "levels of children below each root")
	flag.IntVar(&fanout, "fanout", 4, "children per folder")
	flag.IntVar(&concurrency, "concurrency", 4, "subtrees seeded in parallel")
	flag.StringVar(&owner, "owner", "", "owner user id to stamp on created folders")
	flag.StringVar(&prefix, "prefix", "seed", "name prefix for created folders")
	flag.BoolVar(&printToken, "token", false, "print an access token for -owner and exit")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	var ownerID *uuid.UUID
	if strings.TrimSpace(owner) != "" {
		id, err := uuid.Parse(strings.TrimSpace(owner))
		if err != nil || id == uuid.Nil {
			fmt.Printf("invalid -owner %q\n", owner)
			os.Exit(1)
		}
		ownerID = &id
	}

	if printToken {
		if ownerID == nil {
			fmt.Println("-token requires -owner")
			os.Exit(1)
		}
		secret := application.Cfg.Auth.JWTSecret
		if secret == "" {
			fmt.Println("JWT_SECRET_KEY unset, cannot mint a token")
			os.Exit(1)
		}
		token, err := middleware.IssueToken(secret, *ownerID, application.Cfg.AccessTTL())
		if err != nil {
			fmt.Printf("mint token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	if roots < 1 || depth < 0 || fanout < 0 {
		fmt.Println("need -roots >= 1, -depth >= 0, -fanout >= 0")
		os.Exit(1)
	}

	var created atomic.Int64
	g, ctx := errgroup.WithContext(context.Background())
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i := 1; i <= roots; i++ {
		name := fmt.Sprintf("%s-%d", prefix, i)
		g.Go(func() error {
			return seedSubtree(ctx, application.Services.Folder, ownerID, nil, name, depth, fanout, &created)
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Printf("seed failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("done; created=%d folders across %d roots\n", created.Load(), roots)
}

// seedSubtree creates name under parentID, then fanout children per level
// until depth runs out. Siblings of one parent are created in order; only
// whole root subtrees run in parallel, so parents always exist first.
func seedSubtree(ctx context.Context, svc services.FolderService, ownerID, parentID *uuid.UUID, name string, depth, fanout int, created *atomic.Int64) error {
	f, err := svc.Create(ctx, services.CreateFolderInput{
		Name:     name,
		ParentID: parentID,
		OwnerID:  ownerID,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	created.Add(1)
	if depth <= 0 {
		return nil
	}
	for j := 1; j <= fanout; j++ {
		if err := seedSubtree(ctx, svc, ownerID, &f.ID, fmt.Sprintf("%s-%d", name, j), depth-1, fanout, created); err != nil {
			return err
		}
	}
	return nil
}
