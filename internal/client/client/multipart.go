package client

import (
	"bytes"
	"mime/multipart"

	"github.com/dmitrijs2005/supportportal/internal/client/models"
)

// encodeUserForm builds the create/update body. currentUsername is only
// written when set, so a create carries no prior-username context.
func encodeUserForm(form UserForm) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	u := form.User
	fields := []struct{ name, value string }{
		{"firstName", u.FirstName},
		{"lastName", u.LastName},
		{"username", u.Username},
		{"email", u.Email},
		{"role", u.Role},
		{"isNonLocked", formBool(u.NotLocked)},
		{"isActive", formBool(u.Active)},
	}
	if form.CurrentUsername != "" {
		if err := w.WriteField("currentUsername", form.CurrentUsername); err != nil {
			return nil, "", err
		}
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	if !form.Image.Empty() {
		if err := writeImage(w, *form.Image); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func encodeProfileImageForm(username string, image models.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("username", username); err != nil {
		return nil, "", err
	}
	if err := writeImage(w, image); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeImage(w *multipart.Writer, image models.Image) error {
	name := image.Filename
	if name == "" {
		name = "profile-image"
	}
	part, err := w.CreateFormFile("profileImage", name)
	if err != nil {
		return err
	}
	_, err = part.Write(image.Data)
	return err
}
