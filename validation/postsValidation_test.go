package validation

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"blog-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestValidateCreatePost(t *testing.T) {
	valid := models.CreatePostInput{Title: "Hi", Content: "World", Author: "A"}

	tests := []struct {
		name   string
		mutate func(*models.CreatePostInput)
		fields []string
	}{
		{name: "valid", mutate: func(*models.CreatePostInput) {}},
		{name: "missing title", mutate: func(in *models.CreatePostInput) { in.Title = "" }, fields: []string{"title"}},
		{name: "missing content", mutate: func(in *models.CreatePostInput) { in.Content = "" }, fields: []string{"content"}},
		{name: "missing author", mutate: func(in *models.CreatePostInput) { in.Author = "" }, fields: []string{"author"}},
		{name: "title at limit", mutate: func(in *models.CreatePostInput) { in.Title = strings.Repeat("a", 200) }},
		{name: "title over limit", mutate: func(in *models.CreatePostInput) { in.Title = strings.Repeat("a", 201) }, fields: []string{"title"}},
		{name: "multibyte title at limit", mutate: func(in *models.CreatePostInput) { in.Title = strings.Repeat("é", 200) }},
		{
			name:   "everything missing",
			mutate: func(in *models.CreatePostInput) { *in = models.CreatePostInput{} },
			fields: []string{"title", "content", "author"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			err := ValidateCreatePost(in)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			var got []string
			for _, fe := range verr.Errors {
				got = append(got, fe.Field)
				assert.NotEmpty(t, fe.Reason)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestValidateCreatePostTitleReason(t *testing.T) {
	err := ValidateCreatePost(models.CreatePostInput{Title: strings.Repeat("x", 201), Content: "c", Author: "a"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, FieldError{Field: "title", Reason: "must be shorter than or equal to 200 characters"}, verr.Errors[0])
	assert.Contains(t, verr.Error(), "title must be shorter")
}

func TestValidateUpdatePost(t *testing.T) {
	assert.NoError(t, ValidateUpdatePost(models.UpdatePostInput{}))
	assert.NoError(t, ValidateUpdatePost(models.UpdatePostInput{Title: strPtr("New")}))

	err := ValidateUpdatePost(models.UpdatePostInput{Title: strPtr(""), Author: strPtr("")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []FieldError{
		{Field: "title", Reason: "should not be empty"},
		{Field: "author", Reason: "should not be empty"},
	}, verr.Errors)

	err = ValidateUpdatePost(models.UpdatePostInput{Title: strPtr(strings.Repeat("t", 201))})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Errors[0].Field)
}

func TestFromDecodeError(t *testing.T) {
	decode := func(body string, v interface{}) error {
		return json.NewDecoder(bytes.NewBufferString(body)).Decode(v)
	}

	var create models.CreatePostInput
	verr := FromDecodeError(decode(`{"title":"a","content":"b","author":"c","published":"yes"}`, &create))
	require.NotNil(t, verr)
	assert.Equal(t, []FieldError{{Field: "published", Reason: "must be a boolean value"}}, verr.Errors)

	var update models.UpdatePostInput
	verr = FromDecodeError(decode(`{"title":42}`, &update))
	require.NotNil(t, verr)
	assert.Equal(t, []FieldError{{Field: "title", Reason: "must be a string"}}, verr.Errors)

	assert.Nil(t, FromDecodeError(decode(`{"title":`, &update)))
	assert.Nil(t, FromDecodeError(decode(`[1,2]`, &update)))
}
