package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/backend-template/platform"
	"github.com/kbukum/backend-template/storage"
)

// StorageCommand groups the object storage subcommands.
type StorageCommand struct {
	Put   PutCommand   `command:"put" description:"Upload a local file"`
	Get   GetCommand   `command:"get" description:"Download an object to a local file"`
	Rm    RmCommand    `command:"rm" description:"Delete an object"`
	Ls    LsCommand    `command:"ls" description:"List object keys under a prefix"`
	URL   URLCommand   `command:"url" description:"Print a presigned URL for an object"`
	Image ImageCommand `command:"image" description:"Upload an image under a generated key and print its public URL"`
}

// withGateway runs fn against the started storage gateway.
func withGateway(fn func(ctx context.Context, g *storage.Gateway) error) error {
	return runTask(needs{storage: true}, func(ctx context.Context, p *platform.Platform) error {
		g := p.Gateway()
		if g == nil {
			return errStorageDisabled
		}
		return fn(ctx, g)
	})
}

type PutCommand struct {
	Args struct {
		Local string `positional-arg-name:"local-file" required:"yes"`
		Key   string `positional-arg-name:"key" required:"yes"`
	} `positional-args:"yes"`
}

func (c *PutCommand) Execute(_ []string) error {
	return withGateway(func(ctx context.Context, g *storage.Gateway) error {
		if err := g.UploadObject(ctx, c.Args.Local, c.Args.Key); err != nil {
			return err
		}
		fmt.Fprintln(stdout, storage.MsgUploaded)
		return nil
	})
}

type GetCommand struct {
	Args struct {
		Key   string `positional-arg-name:"key" required:"yes"`
		Local string `positional-arg-name:"local-file" required:"yes"`
	} `positional-args:"yes"`
}

func (c *GetCommand) Execute(_ []string) error {
	return withGateway(func(ctx context.Context, g *storage.Gateway) error {
		if err := g.DownloadObject(ctx, c.Args.Key, c.Args.Local); err != nil {
			return err
		}
		fmt.Fprintln(stdout, storage.MsgDownloaded)
		return nil
	})
}

type RmCommand struct {
	Args struct {
		Key string `positional-arg-name:"key" required:"yes"`
	} `positional-args:"yes"`
}

func (c *RmCommand) Execute(_ []string) error {
	return withGateway(func(ctx context.Context, g *storage.Gateway) error {
		if err := g.DeleteObject(ctx, c.Args.Key); err != nil {
			return err
		}
		fmt.Fprintln(stdout, storage.MsgDeleted)
		return nil
	})
}

type LsCommand struct {
	Args struct {
		Prefix string `positional-arg-name:"prefix"`
	} `positional-args:"yes"`
}

func (c *LsCommand) Execute(_ []string) error {
	return withGateway(func(ctx context.Context, g *storage.Gateway) error {
		keys, err := g.ListObjects(ctx, c.Args.Prefix)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(stdout, k)
		}
		return nil
	})
}

type URLCommand struct {
	Args struct {
		Key string `positional-arg-name:"key" required:"yes"`
	} `positional-args:"yes"`
}

func (c *URLCommand) Execute(_ []string) error {
	return withGateway(func(ctx context.Context, g *storage.Gateway) error {
		u, err := g.ObjectURL(ctx, c.Args.Key)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, u)
		return nil
	})
}

type ImageCommand struct {
	Args struct {
		Local  string `positional-arg-name:"image-file" required:"yes"`
		Folder string `positional-arg-name:"folder"`
	} `positional-args:"yes"`
}

func (c *ImageCommand) Execute(_ []string) error {
	return withGateway(func(ctx context.Context, g *storage.Gateway) error {
		f, err := os.Open(c.Args.Local)
		if err != nil {
			return err
		}
		defer f.Close()

		u, err := g.UploadImage(ctx, f, c.Args.Folder)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, u)
		return nil
	})
}
