package export

// Kind classifies a top-level HTML element for paragraph construction.
type Kind int

const (
	KindFallback Kind = iota
	KindHeading1
	KindHeading2
	KindHeading3
	KindParagraph
	KindBulletList
	KindOrderedList
)

// Kinds lists every element kind, fallback included.
func Kinds() []Kind {
	return []Kind{KindFallback, KindHeading1, KindHeading2, KindHeading3, KindParagraph, KindBulletList, KindOrderedList}
}

// KindOf maps a lower-case tag name to its kind.
func KindOf(tag string) Kind {
	switch tag {
	case "h1":
		return KindHeading1
	case "h2":
		return KindHeading2
	case "h3":
		return KindHeading3
	case "p":
		return KindParagraph
	case "ul":
		return KindBulletList
	case "ol":
		return KindOrderedList
	default:
		return KindFallback
	}
}

func (k Kind) String() string {
	switch k {
	case KindHeading1:
		return "heading1"
	case KindHeading2:
		return "heading2"
	case KindHeading3:
		return "heading3"
	case KindParagraph:
		return "paragraph"
	case KindBulletList:
		return "bullet_list"
	case KindOrderedList:
		return "ordered_list"
	default:
		return "fallback"
	}
}
