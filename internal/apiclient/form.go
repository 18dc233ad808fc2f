package apiclient

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/go-faster/errors"

	"github.com/phillip-england/employeems/internal/employee"
)

// File is an upload attached to a multipart submission.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Form is a multipart submission: ordered text fields plus an optional file.
type Form struct {
	Fields []employee.Field
	File   *File
}

func (f *Form) Add(name, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	f.Fields = append(f.Fields, employee.Field{Name: name, Value: value})
}

// EmployeeForm serialises e for create/update, attaching avatar when set.
func EmployeeForm(e employee.Employee, avatar *File) (Form, error) {
	fields, err := e.Fields()
	if err != nil {
		return Form{}, err
	}
	return Form{Fields: fields, File: avatar}, nil
}

func (f Form) Encode() (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, field := range f.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", errors.Wrapf(err, "write field %s", field.Name)
		}
	}
	if f.File != nil && len(f.File.Data) > 0 {
		name := f.File.Field
		if name == "" {
			name = "avatar"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, f.File.Filename))
		contentType := f.File.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", errors.Wrap(err, "prepare upload")
		}
		if _, err := part.Write(f.File.Data); err != nil {
			return nil, "", errors.Wrap(err, "write upload")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", errors.Wrap(err, "finalize form")
	}
	return &body, writer.FormDataContentType(), nil
}
