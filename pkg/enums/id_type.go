package enums

// IDType enumerates the identity documents accepted at the counter.
type IDType string

const (
	IDTypeDriversLicense IDType = "DRIVERS_LICENSE"
	IDTypeStateID        IDType = "STATE_ID"
	IDTypePassport       IDType = "PASSPORT"
	IDTypeMilitaryID     IDType = "MILITARY_ID"
)

var validIDTypes = []IDType{
	IDTypeDriversLicense,
	IDTypeStateID,
	IDTypePassport,
	IDTypeMilitaryID,
}

func (t IDType) String() string { return string(t) }

func (t IDType) IsValid() bool { return isMember(validIDTypes, t) }

func ParseIDType(value string) (IDType, error) {
	return parseMember(validIDTypes, value, "id type")
}
