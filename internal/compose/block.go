// Package compose arranges a certifiable set into an ordered sequence of typed
// layout blocks. The block sequence is the printable contract: identical
// inputs produce an identical sequence, so downstream verification can hash or
// diff composed documents without any rendering dependency.
package compose

// Role tags a block with its semantic meaning in the document.
type Role string

const (
	RoleBorder            Role = "border"
	RoleWatermark         Role = "watermark"
	RoleHeader            Role = "header"
	RoleSubjectPanel      Role = "subject_panel"
	RoleDosePanel         Role = "dose_panel"
	RoleVerificationStamp Role = "verification_stamp"
	RoleFooter            Role = "footer"
)

// Align is the horizontal text alignment inside a block frame.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Rect is a block frame in page points, origin at the top-left corner.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Block is one renderable unit. Seq is the 1-based dose ordinal for
// RoleDosePanel blocks and zero otherwise. Rotation is in degrees,
// counter-clockwise around the frame center. Filled marks band/backdrop
// blocks; Circular marks blocks rendered as circles (markers, the stamp).
type Block struct {
	Role     Role
	Seq      int
	Frame    Rect
	Rotation float64
	Align    Align
	Filled   bool
	Circular bool
	Lines    []string
}

// Document is a fully composed certificate ready for a sink. SubjectName and
// Identifier are lifted out of the blocks so sinks can derive artifact names
// without parsing text back out.
type Document struct {
	Identifier  string
	SubjectName string
	Blocks      []Block
}
