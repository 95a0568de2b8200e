package upload

// Field is the closed set of recognized upload form fields. Files are
// dispatched by this tagged enumeration rather than an open string-keyed
// table, so an unrecognized field name is an explicit rejection instead of a
// silent drop.
type Field int

const (
	FieldImage Field = iota
	FieldImages
	FieldProfileImage
	FieldBannerImage
	FieldAvatar
	FieldBanner
	FieldLogo
	FieldAudioFile
	FieldDocument
)

var fieldKeys = map[Field]string{
	FieldImage:        "image",
	FieldImages:       "images",
	FieldProfileImage: "profileImage",
	FieldBannerImage:  "bannerImage",
	FieldAvatar:       "avatar",
	FieldBanner:       "banner",
	FieldLogo:         "logo",
	FieldAudioFile:    "audioFile",
	FieldDocument:     "document",
}

// Key returns the form/body key of the field.
func (f Field) Key() string {
	return fieldKeys[f]
}

// Multi reports whether the field accepts multiple files. Only the image
// gallery does; every other field is single-valued.
func (f Field) Multi() bool {
	return f == FieldImages
}

// Fields returns all recognized fields in a fixed order.
func Fields() []Field {
	return []Field{
		FieldImage,
		FieldImages,
		FieldProfileImage,
		FieldBannerImage,
		FieldAvatar,
		FieldBanner,
		FieldLogo,
		FieldAudioFile,
		FieldDocument,
	}
}

// ParseField resolves a form field name to its Field.
func ParseField(name string) (Field, bool) {
	for f, k := range fieldKeys {
		if k == name {
			return f, true
		}
	}
	return 0, false
}
