package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/photosite"
	"github.com/eringen/photosite/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "initialize":
		err = runInitialize(args)
	case "create-blog":
		err = runCreateSection(args, false)
	case "create-auto":
		err = runCreateSection(args, true)
	case "post":
		err = runPost(args)
	case "add-user":
		err = runAddUser(args)
	case "add-comment":
		err = runAddComment(args)
	case "build":
		err = runBuild(args)
	case "preview":
		err = runPreview(args)
	case "version":
		fmt.Printf("photosite %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`photosite - A photo-centric static site generator

Usage:
  photosite <command> [flags] <domain>

Commands:
  initialize    Create the configuration for a new site
  create-blog   Create a curated blog section
  create-auto   Create a filter-driven section
  post          Add a post to a blog section
  add-user      Register a commenter
  add-comment   Attach a comment to a post
  build         Generate the site into its build directory
  preview       Serve the build directory locally
  version       Print the photosite version
  help          Show this help message

Flags come before the domain. Every command takes -config to override
the configuration root (default: the user configuration directory).

Examples:
  photosite initialize -build ./public example.com
  photosite create-auto -title Birds -all-tags animals/birds example.com
  photosite build -library photos.db example.com`)
}

func defaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "photosite")
	}
	return "."
}

func configFlag(fs *flag.FlagSet) *string {
	return fs.String("config", defaultConfigDir(), "configuration root directory")
}

// domainArg returns the single positional argument, or an error naming the
// command's usage line.
func domainArg(fs *flag.FlagSet, usage string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("usage: photosite %s", usage)
	}
	return fs.Arg(0), nil
}

func splitList(s string) []string {
	return photosite.FilterEmpty(strings.Split(s, ","))
}

func runInitialize(args []string) error {
	fs := flag.NewFlagSet("initialize", flag.ExitOnError)
	config := configFlag(fs)
	build := fs.String("build", "", "build output directory (required)")
	name := fs.String("name", "", "site name shown on pages (defaults to the domain)")
	favicon := fs.String("favicon", "", "favicon file to copy into the site")
	fs.Parse(args)

	domain, err := domainArg(fs, "initialize -build <dir> [flags] <domain>")
	if err != nil {
		return err
	}
	if *build == "" {
		return fmt.Errorf("initialize requires -build")
	}
	if _, err := photosite.InitSite(*config, domain, *build, *name, *favicon); err != nil {
		return err
	}
	fmt.Printf("Initialized %s\n", domain)
	return nil
}

func runCreateSection(args []string, auto bool) error {
	cmd := "create-blog"
	if auto {
		cmd = "create-auto"
	}
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	config := configFlag(fs)
	title := fs.String("title", "", "section title (required)")
	slug := fs.String("slug", "", "section slug (defaults to a slugified title)")
	description := fs.String("description", "", "section description, markdown")
	icon := fs.String("icon", "", "navigation icon, e.g. an emoji")
	var creators, allTags, noTags *string
	if auto {
		creators = fs.String("creators", "", "comma-separated creator filter")
		allTags = fs.String("all-tags", "", "comma-separated tags every image must carry")
		noTags = fs.String("no-tags", "", "comma-separated tags no image may carry")
	}
	fs.Parse(args)

	domain, err := domainArg(fs, cmd+" -title <title> [flags] <domain>")
	if err != nil {
		return err
	}
	if *title == "" {
		return fmt.Errorf("%s requires -title", cmd)
	}
	site, err := photosite.OpenSite(*config, domain)
	if err != nil {
		return err
	}
	cfg := photosite.SectionConfig{
		Title:       *title,
		Slug:        *slug,
		Description: *description,
		Icon:        *icon,
	}
	var created string
	if auto {
		cfg.Creators = splitList(*creators)
		cfg.AllTags = splitList(*allTags)
		cfg.NoTags = splitList(*noTags)
		created, err = site.CreateAuto(cfg)
	} else {
		created, err = site.CreateBlog(cfg)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Created section %s\n", created)
	return nil
}

func runPost(args []string) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	config := configFlag(fs)
	library := fs.String("library", "", "photo library database (required)")
	blog := fs.String("blog", "", "blog section slug (required)")
	title := fs.String("title", "", "post title (required)")
	slug := fs.String("slug", "", "post slug (defaults to the timestamp)")
	description := fs.String("description", "", "post description, markdown")
	images := fs.String("images", "", "comma-separated image ids (required)")
	date := fs.String("date", "", `post date, "YYYY-MM-DD HH:MM" or "YYYY-MM-DD" (defaults to now)`)
	fs.Parse(args)

	domain, err := domainArg(fs, "post -library <db> -blog <slug> -title <title> -images <ids> [flags] <domain>")
	if err != nil {
		return err
	}
	if *library == "" || *blog == "" || *title == "" || *images == "" {
		return fmt.Errorf("post requires -library, -blog, -title and -images")
	}

	var ids []int
	for _, raw := range splitList(*images) {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("bad image id %q", raw)
		}
		ids = append(ids, id)
	}

	timestamp := time.Now().Unix()
	if *date != "" {
		if timestamp, err = photosite.ParseDate(*date); err != nil {
			return err
		}
	}

	site, err := photosite.OpenSite(*config, domain)
	if err != nil {
		return err
	}
	photos, err := photosite.OpenLibrary(*library)
	if err != nil {
		return err
	}
	defer photos.Close()

	pc := photosite.PostConfig{
		Title:       *title,
		Slug:        *slug,
		Description: *description,
		Images:      ids,
	}
	if err := site.AddPost(context.Background(), photos, *blog, pc, timestamp); err != nil {
		return err
	}
	fmt.Printf("Posted to %s at %d\n", *blog, timestamp)
	return nil
}

func runAddUser(args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ExitOnError)
	config := configFlag(fs)
	email := fs.String("email", "", "user's email address (required)")
	name := fs.String("name", "", "display name (proposed interactively when empty)")
	fs.Parse(args)

	domain, err := domainArg(fs, "add-user -email <address> [flags] <domain>")
	if err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("add-user requires -email")
	}
	site, err := photosite.OpenSite(*config, domain)
	if err != nil {
		return err
	}
	display, err := site.AddUser(*email, *name, photosite.NewConsoleAsker(os.Stdin, os.Stdout))
	if err != nil {
		return err
	}
	fmt.Printf("Added %s as %q\n", *email, display)
	return nil
}

func runAddComment(args []string) error {
	fs := flag.NewFlagSet("add-comment", flag.ExitOnError)
	config := configFlag(fs)
	user := fs.String("user", "", "commenter's email address (required)")
	blog := fs.String("blog", "", "blog section slug")
	section := fs.String("section", "", "auto-section slug")
	slug := fs.String("slug", "", "post slug the comment attaches to (required)")
	text := fs.String("text", "", "comment text (required)")
	fs.Parse(args)

	domain, err := domainArg(fs, "add-comment -user <address> -slug <slug> -text <text> [flags] <domain>")
	if err != nil {
		return err
	}
	if *user == "" || *slug == "" || *text == "" {
		return fmt.Errorf("add-comment requires -user, -slug and -text")
	}
	site, err := photosite.OpenSite(*config, domain)
	if err != nil {
		return err
	}
	return site.AddComment(*user, *blog, *section, *slug, *text)
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	config := configFlag(fs)
	library := fs.String("library", "", "photo library database (required)")
	fresh := fs.Bool("fresh", false, "clear the build directory first")
	fs.Parse(args)

	domain, err := domainArg(fs, "build -library <db> [flags] <domain>")
	if err != nil {
		return err
	}
	if *library == "" {
		return fmt.Errorf("build requires -library")
	}
	site, err := photosite.OpenSite(*config, domain)
	if err != nil {
		return err
	}
	photos, err := photosite.OpenLibrary(*library)
	if err != nil {
		return err
	}
	defer photos.Close()

	app := photosite.New(site, photos, views.Default())
	return app.Build(context.Background(), *fresh)
}

func runPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	config := configFlag(fs)
	addr := fs.String("addr", "localhost:8080", "listen address")
	fs.Parse(args)

	domain, err := domainArg(fs, "preview [flags] <domain>")
	if err != nil {
		return err
	}
	site, err := photosite.OpenSite(*config, domain)
	if err != nil {
		return err
	}
	cfg, err := site.Config()
	if err != nil {
		return err
	}
	fmt.Printf("Serving %s on http://%s\n", cfg.Build, *addr)
	return photosite.Preview(*addr, cfg.Build)
}
