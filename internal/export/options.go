package export

import (
	"fmt"

	"howett.net/plist"

	"github.com/backmassage/arc2ipa/internal/config"
)

// Options is the ExportOptions.plist payload. It is a closed set of
// variants, one per export method; each carries its own typed fields.
type Options interface {
	// Method reports which export method the variant belongs to.
	Method() config.Method
	// Entries returns the plist dictionary for the variant.
	Entries() map[string]interface{}
}

// Common holds the keys every method shares.
type Common struct {
	SigningStyle      config.SigningStyle
	TeamID            string
	StripSwiftSymbols bool
	CompileBitcode    bool
}

func (c Common) entries(m config.Method) map[string]interface{} {
	e := map[string]interface{}{
		"method":            string(m),
		"signingStyle":      string(c.SigningStyle),
		"stripSwiftSymbols": c.StripSwiftSymbols,
		"compileBitcode":    c.CompileBitcode,
	}
	if c.TeamID != "" {
		e["teamID"] = c.TeamID
	}
	return e
}

// NoThinning disables app thinning; the package runs on every device.
const NoThinning = "<none>"

// DevelopmentOptions exports a development-signed package.
type DevelopmentOptions struct {
	Common
	Thinning string
}

func (DevelopmentOptions) Method() config.Method { return config.MethodDevelopment }

func (o DevelopmentOptions) Entries() map[string]interface{} {
	e := o.Common.entries(o.Method())
	e["thinning"] = o.Thinning
	return e
}

// AdHocOptions exports for registered devices.
type AdHocOptions struct {
	Common
	Thinning string
}

func (AdHocOptions) Method() config.Method { return config.MethodAdHoc }

func (o AdHocOptions) Entries() map[string]interface{} {
	e := o.Common.entries(o.Method())
	e["thinning"] = o.Thinning
	return e
}

// AppStoreOptions exports for App Store Connect.
type AppStoreOptions struct {
	Common
	UploadSymbols    bool
	ManageAppVersion bool
}

func (AppStoreOptions) Method() config.Method { return config.MethodAppStore }

func (o AppStoreOptions) Entries() map[string]interface{} {
	e := o.Common.entries(o.Method())
	e["uploadSymbols"] = o.UploadSymbols
	e["manageAppVersionAndBuildNumber"] = o.ManageAppVersion
	return e
}

// EnterpriseOptions exports for in-house distribution.
type EnterpriseOptions struct {
	Common
	Thinning string
}

func (EnterpriseOptions) Method() config.Method { return config.MethodEnterprise }

func (o EnterpriseOptions) Entries() map[string]interface{} {
	e := o.Common.entries(o.Method())
	e["thinning"] = o.Thinning
	return e
}

// NewOptions returns the variant for m. Common defaults: swift symbols
// stripped, bitcode off.
func NewOptions(m config.Method, style config.SigningStyle, teamID string) (Options, error) {
	c := Common{
		SigningStyle:      style,
		TeamID:            teamID,
		StripSwiftSymbols: true,
		CompileBitcode:    false,
	}
	switch m {
	case config.MethodDevelopment:
		return DevelopmentOptions{Common: c, Thinning: NoThinning}, nil
	case config.MethodAdHoc:
		return AdHocOptions{Common: c, Thinning: NoThinning}, nil
	case config.MethodAppStore:
		return AppStoreOptions{Common: c, UploadSymbols: true, ManageAppVersion: false}, nil
	case config.MethodEnterprise:
		return EnterpriseOptions{Common: c, Thinning: NoThinning}, nil
	default:
		return nil, fmt.Errorf("%w %q", config.ErrInvalidMethod, m)
	}
}

// EncodePlist renders opts as an XML property list.
func EncodePlist(opts Options) ([]byte, error) {
	data, err := plist.MarshalIndent(opts.Entries(), plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("encode export options: %w", err)
	}
	return data, nil
}
