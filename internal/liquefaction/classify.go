package liquefaction

// FSClass is the risk class of a factor of safety
type FSClass string

const (
	ClassError          FSClass = "Error"
	ClassLiquefiable    FSClass = "Liquefiable"
	ClassMarginal       FSClass = "Marginal liquefaction"
	ClassNotLiquefiable FSClass = "Not liquefiable"
)

// Class thresholds
const (
	FSLiquefiable = 1.0 // below: liquefaction predicted
	FSMarginal    = 1.3 // below: marginal
)

// ClassifyFS maps a factor of safety to its class. A nil FS means the
// computation failed.
func ClassifyFS(fs *float64) FSClass {
	if fs == nil {
		return ClassError
	}
	switch {
	case *fs < FSLiquefiable:
		return ClassLiquefiable
	case *fs < FSMarginal:
		return ClassMarginal
	default:
		return ClassNotLiquefiable
	}
}

// Interpretation returns the explanatory sentence shown next to the class.
func (c FSClass) Interpretation() string {
	switch c {
	case ClassLiquefiable:
		return "FS is below 1.0. The simplified method predicts that the layer will liquefy."
	case ClassMarginal:
		return "FS is between 1.0 and 1.3. The result is uncertain; caution and further analysis are required."
	case ClassNotLiquefiable:
		return "FS is at least 1.3. The simplified method indicates a stable layer."
	default:
		return "The factor of safety could not be computed."
	}
}
