package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/supportportal/internal/client/upload"
	"github.com/dustin/go-humanize"
)

// Upload sends a new profile image for the operator in the background.
// The outcome arrives as a notification; "progress" shows how far it got.
func (a *App) Upload(ctx context.Context, path string) error {
	if path == "" {
		var err error
		if path, err = getSimpleText(a.reader, "Image path", a.out); err != nil {
			return err
		}
	}
	image, err := LoadImage(path)
	if err != nil {
		a.println("Cannot use image:", err)
		return nil
	}
	if image == nil {
		return nil
	}

	started := a.background(func(ctx context.Context) {
		if err := a.imageService.Upload(ctx, *image); err != nil {
			a.logger.Debug(ctx, "profile image upload failed", "error", err)
		}
	})
	if !started {
		return a.handle(ctx, errNoView)
	}
	a.println(fmt.Sprintf("Uploading %s (%s)...", image.Filename, humanize.Bytes(uint64(len(image.Data)))))
	return nil
}

func (a *App) Progress(ctx context.Context) error {
	st := a.imageService.Progress()
	switch st.Phase {
	case upload.PhaseIdle:
		a.println("No upload has been started.")
	case upload.PhaseUploading:
		a.println(fmt.Sprintf("Uploading: %d%%", st.Percentage))
	case upload.PhaseDone:
		if st.Succeeded {
			a.println("Upload finished.")
		} else {
			a.println(fmt.Sprintf("Upload failed at %d%%.", st.Percentage))
		}
	}
	return nil
}
