package compose

import (
	"fmt"
	"time"

	"vaxcert/internal/domain"
	"vaxcert/internal/eligibility"
	id "vaxcert/pkg/domain"
)

// Input carries everything composition needs. Facilities is an optional
// per-facility lookup; unresolved references degrade to the generic label.
type Input struct {
	Subject    domain.Subject
	Set        eligibility.CertifiableSet
	Facilities map[id.FacilityID]domain.IssuingFacility
	Identifier string
	IssuedAt   time.Time
}

// Compose builds the ordered block sequence for a certificate.
// This is pure domain logic - no I/O, no side effects. Two calls with
// identical inputs yield identical documents.
func Compose(in Input) Document {
	blocks := make([]Block, 0, 7+len(in.Set.Doses))

	blocks = append(blocks,
		Block{Role: RoleBorder, Frame: borderFrame(outerBorderInset)},
		Block{Role: RoleBorder, Frame: borderFrame(insetBorderInset)},
		Block{
			Role:     RoleWatermark,
			Frame:    Rect{X: 0, Y: pageHeight/2 - 60, W: pageWidth, H: 120},
			Rotation: watermarkRotation,
			Align:    AlignCenter,
			Lines:    []string{watermarkText},
		},
		Block{
			Role:   RoleHeader,
			Frame:  Rect{X: headerMargin, Y: headerTop, W: pageWidth - 2*headerMargin, H: headerHeight},
			Align:  AlignCenter,
			Filled: true,
			Lines:  []string{titleText, subtitleText},
		},
		Block{
			Role:  RoleHeader,
			Frame: Rect{X: headerMargin, Y: identifierTop, W: pageWidth - 2*headerMargin, H: identifierHeight},
			Align: AlignRight,
			Lines: []string{in.Identifier},
		},
		Block{
			Role:  RoleSubjectPanel,
			Frame: Rect{X: headerMargin, Y: subjectPanelTop, W: pageWidth - 2*headerMargin, H: subjectPanelHeight},
			Align: AlignLeft,
			Lines: subjectLines(in.Subject),
		},
	)

	for i, d := range in.Set.Doses {
		blocks = append(blocks, doseBlock(i, d, in.Set.Product, in.Facilities))
	}

	blocks = append(blocks,
		Block{
			Role:     RoleVerificationStamp,
			Frame:    stampFrame(),
			Rotation: stampRotation,
			Align:    AlignCenter,
			Circular: true,
			Lines:    []string{stampLineOne, stampLineTwo},
		},
		Block{
			Role:  RoleFooter,
			Frame: Rect{X: headerMargin, Y: footerTop, W: pageWidth - 2*headerMargin, H: footerHeight},
			Align: AlignCenter,
			Lines: []string{
				disclaimer,
				"Issued on " + in.IssuedAt.Format(dateLayout),
			},
		},
	)

	return Document{
		Identifier:  in.Identifier,
		SubjectName: in.Subject.DisplayName,
		Blocks:      blocks,
	}
}

// subjectLines lists the raw subject fields. Age is deliberately not derived
// from the date of birth; the document shows stored fields only.
func subjectLines(s domain.Subject) []string {
	return []string{
		"Name: " + s.DisplayName,
		"Sex: " + s.Sex,
		"Locality: " + s.Locality,
	}
}

func doseBlock(i int, d domain.DoseEvent, product domain.ProductCatalogEntry, facilities map[id.FacilityID]domain.IssuingFacility) Block {
	facilityName := fallbackFacilityLabel
	if f, ok := facilities[d.FacilityID]; ok && f.DisplayName != "" {
		facilityName = f.DisplayName
	}

	return Block{
		Role:     RoleDosePanel,
		Seq:      d.Sequence,
		Frame:    dosePanelFrame(i),
		Align:    AlignLeft,
		Circular: true, // sequence marker renders as a circled number
		Lines: []string{
			fmt.Sprintf("Dose %d", d.Sequence),
			product.DisplayName,
			d.Date.Format(dateLayout),
			facilityName,
		},
	}
}
