package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/agrisense/internal/client/models"
	"github.com/dmitrijs2005/agrisense/internal/client/services"
	"github.com/dmitrijs2005/agrisense/internal/filex"
)

const (
	feedPageSize    = 20
	topContributors = 5
)

// readFile is a test seam for loading images to upload.
var readFile = filex.ReadLimited

func postID(args []string, usage string) (int64, error) {
	s, err := requireArg(args, usage)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage(usage)
	}
	return id, nil
}

// Feed lists recent community posts, optionally for one crop.
func (a *App) Feed(ctx context.Context, args []string) error {
	posts, err := a.community.Posts(ctx, models.PostFilter{Limit: feedPageSize, Crop: strings.ToLower(joinArgs(args))})
	if err != nil {
		return err
	}
	a.renderPosts(posts)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	q, err := requireArg(args, "search <text>")
	if err != nil {
		return err
	}
	if len(args) > 1 {
		q = joinArgs(args)
	}
	posts, err := a.community.Search(ctx, q, 0, feedPageSize)
	if err != nil {
		return err
	}
	a.renderPosts(posts)
	return nil
}

func (a *App) Trending(ctx context.Context, _ []string) error {
	posts, err := a.community.Trending(ctx)
	if err != nil {
		return err
	}
	a.renderPosts(posts)
	return nil
}

func (a *App) Top(ctx context.Context, _ []string) error {
	list, err := a.community.TopContributors(ctx, topContributors)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No contributors yet.")
		return nil
	}
	a.renderContributors(list)
	return nil
}

// MyPosts lists the posts of the signed-in user.
func (a *App) MyPosts(ctx context.Context, _ []string) error {
	u, ok := a.auth.CurrentUser()
	if !ok || u.ID == 0 {
		var err error
		if u, err = a.auth.Me(ctx); err != nil {
			return err
		}
	}
	posts, err := a.community.UserPosts(ctx, u.ID)
	if err != nil {
		return err
	}
	a.renderPosts(posts)
	return nil
}

// uploadFile reads path and uploads it as a post image.
func (a *App) uploadFile(ctx context.Context, path string) (string, error) {
	data, err := readFile(path, services.MaxImageSize)
	if err != nil {
		return "", err
	}
	return a.community.UploadImage(ctx, path, data)
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if _, err := requireArg(args, "upload <file>"); err != nil {
		return err
	}
	url, err := a.uploadFile(ctx, joinArgs(args))
	if err != nil {
		return err
	}
	a.printf("Uploaded: %s\n", url)
	return nil
}

// Post composes a new post. An image path may be given and is uploaded
// before the post is created.
func (a *App) Post(ctx context.Context, _ []string) error {
	content, err := getMultiline(a.reader, "Write your post", a.out)
	if err != nil {
		return err
	}
	if content == "" {
		return errors.New("post cannot be empty")
	}

	p := models.PostCreate{Content: content}
	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Crop (optional)", &p.Crop},
		{"Category (optional)", &p.Category},
		{"Region (optional)", &p.Region},
	} {
		if *f.dst, err = getSimpleText(a.reader, f.prompt, a.out); err != nil {
			return err
		}
	}

	img, err := getSimpleText(a.reader, "Image file (optional)", a.out)
	if err != nil {
		return err
	}
	if img != "" {
		if p.ImageURL, err = a.uploadFile(ctx, img); err != nil {
			return err
		}
	}

	post, err := a.community.CreatePost(ctx, p)
	if err != nil {
		return err
	}
	a.printf("Posted #%d.\n", post.ID)
	return nil
}

func (a *App) EditPost(ctx context.Context, args []string) error {
	id, err := postID(args, "editpost <id>")
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "New text", a.out)
	if err != nil {
		return err
	}
	if content == "" {
		return errors.New("post cannot be empty")
	}
	upd := models.PostUpdate{Content: content}
	if upd.Crop, err = getSimpleText(a.reader, "Crop (optional)", a.out); err != nil {
		return err
	}
	if upd.Category, err = getSimpleText(a.reader, "Category (optional)", a.out); err != nil {
		return err
	}

	if _, err := a.community.UpdatePost(ctx, id, upd); err != nil {
		return err
	}
	a.printf("Post #%d updated.\n", id)
	return nil
}

func (a *App) DeletePost(ctx context.Context, args []string) error {
	id, err := postID(args, "delpost <id>")
	if err != nil {
		return err
	}
	answer, err := getSimpleText(a.reader, "Delete post #"+strconv.FormatInt(id, 10)+"? (y/N)", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.println("Cancelled.")
		return nil
	}
	if err := a.community.DeletePost(ctx, id); err != nil {
		return err
	}
	a.printf("Post #%d deleted.\n", id)
	return nil
}

func (a *App) Like(ctx context.Context, args []string) error {
	id, err := postID(args, "like <id>")
	if err != nil {
		return err
	}
	res, err := a.community.ToggleLike(ctx, id)
	if errors.Is(err, services.ErrLikeInFlight) {
		a.println("Still updating that like, try again in a moment.")
		return nil
	}
	if err != nil {
		return err
	}
	verb := "Unliked"
	if res.IsLiked {
		verb = "Liked"
	}
	a.printf("%s #%d (%d likes).\n", verb, id, res.LikesCount)
	return nil
}

func (a *App) Comments(ctx context.Context, args []string) error {
	id, err := postID(args, "comments <id>")
	if err != nil {
		return err
	}
	list, err := a.community.Comments(ctx, id)
	if err != nil {
		return err
	}
	a.renderComments(list)
	return nil
}

// Comment adds a comment; the text may follow the post id on the same line.
func (a *App) Comment(ctx context.Context, args []string) error {
	id, err := postID(args, "comment <id> [text]")
	if err != nil {
		return err
	}
	text := joinArgs(args[1:])
	if text == "" {
		if text, err = getSimpleText(a.reader, "Your comment", a.out); err != nil {
			return err
		}
	}
	if _, err := a.community.AddComment(ctx, id, text); err != nil {
		return err
	}
	a.println("Comment added.")
	return nil
}
