package constants

// BloodGroup is an ABO/Rh classification, one of the eight canonical values.
type BloodGroup string

const (
	APos  BloodGroup = "A+"
	ANeg  BloodGroup = "A-"
	BPos  BloodGroup = "B+"
	BNeg  BloodGroup = "B-"
	ABPos BloodGroup = "AB+"
	ABNeg BloodGroup = "AB-"
	OPos  BloodGroup = "O+"
	ONeg  BloodGroup = "O-"
)

var AllBloodGroups = []BloodGroup{APos, ANeg, BPos, BNeg, ABPos, ABNeg, OPos, ONeg}

func (g BloodGroup) Valid() bool {
	for _, v := range AllBloodGroups {
		if v == g {
			return true
		}
	}
	return false
}

// MatchPolicy decides which donor groups are offered a request.
type MatchPolicy string

const (
	MatchExact      MatchPolicy = "exact"
	MatchCompatible MatchPolicy = "compatible"
)

// red cell compatibility: recipient group -> donor groups it can receive from
var donorsFor = map[BloodGroup][]BloodGroup{
	ONeg:  {ONeg},
	OPos:  {ONeg, OPos},
	ANeg:  {ONeg, ANeg},
	APos:  {ONeg, OPos, ANeg, APos},
	BNeg:  {ONeg, BNeg},
	BPos:  {ONeg, OPos, BNeg, BPos},
	ABNeg: {ONeg, ANeg, BNeg, ABNeg},
	ABPos: {ONeg, OPos, ANeg, APos, BNeg, BPos, ABNeg, ABPos},
}

// DonorGroupsFor returns the donor groups matched to a request for the given
// recipient group. An unknown group matches nothing.
func DonorGroupsFor(recipient BloodGroup, policy MatchPolicy) []BloodGroup {
	if !recipient.Valid() {
		return nil
	}
	if policy == MatchExact {
		return []BloodGroup{recipient}
	}
	out := make([]BloodGroup, len(donorsFor[recipient]))
	copy(out, donorsFor[recipient])
	return out
}

// CanDonateTo reports whether a donor of group donor may give to recipient.
func CanDonateTo(donor, recipient BloodGroup) bool {
	for _, g := range donorsFor[recipient] {
		if g == donor {
			return true
		}
	}
	return false
}
