package compose

// Page geometry in points (A4 portrait). The values below are the printable
// contract; changing any of them changes every issued document, so treat them
// like a wire format.
const (
	pageWidth  = 595.0
	pageHeight = 842.0

	outerBorderInset = 18.0
	insetBorderInset = 26.0

	watermarkRotation = -45.0

	headerTop    = 60.0
	headerHeight = 70.0
	headerMargin = 40.0

	identifierTop    = 142.0
	identifierHeight = 18.0

	subjectPanelTop    = 184.0
	subjectPanelHeight = 92.0

	// Dose panels stack from dosePanelTop; panel i (0-based) sits at
	// dosePanelTop + i*(dosePanelHeight+dosePanelGap). The offset is a pure
	// function of the index, there is no running cursor.
	dosePanelTop    = 300.0
	dosePanelHeight = 80.0
	dosePanelGap    = 16.0

	stampCenterX  = 440.0
	stampCenterY  = 640.0
	stampRadius   = 55.0
	stampRotation = -18.0

	footerTop    = 770.0
	footerHeight = 40.0
)

const (
	titleText     = "CERTIFICATE OF VACCINATION"
	subtitleText  = "Immunization Completion Record"
	watermarkText = "VACCINATED"
	stampLineOne  = "VERIFIED"
	stampLineTwo  = "AUTHENTIC RECORD"
	disclaimer    = "This certificate is issued from records supplied by the administering facilities."

	// fallbackFacilityLabel replaces facility names the gateway cannot
	// resolve. Informational value outweighs strict correctness here.
	fallbackFacilityLabel = "Authorized Center"

	dateLayout = "02 Jan 2006"
)

// dosePanelFrame computes the frame of the i-th (0-based) dose panel.
func dosePanelFrame(i int) Rect {
	return Rect{
		X: headerMargin,
		Y: dosePanelTop + float64(i)*(dosePanelHeight+dosePanelGap),
		W: pageWidth - 2*headerMargin,
		H: dosePanelHeight,
	}
}

func borderFrame(inset float64) Rect {
	return Rect{
		X: inset,
		Y: inset,
		W: pageWidth - 2*inset,
		H: pageHeight - 2*inset,
	}
}

func stampFrame() Rect {
	return Rect{
		X: stampCenterX - stampRadius,
		Y: stampCenterY - stampRadius,
		W: 2 * stampRadius,
		H: 2 * stampRadius,
	}
}
