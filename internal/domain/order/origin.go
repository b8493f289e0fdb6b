package order

import "fmt"

type OriginKind string

const (
	OriginManual          OriginKind = "manual"
	OriginGatewayVerified OriginKind = "gateway_verified"
)

// Origin records who vouched for an order's totals. The zero value is Manual.
type Origin struct {
	kind      OriginKind
	reference string
}

func Manual() Origin { return Origin{kind: OriginManual} }

func GatewayVerified(reference string) Origin {
	return Origin{kind: OriginGatewayVerified, reference: reference}
}

// ParseOrigin restores an origin from its stored form.
func ParseOrigin(kind, reference string) (Origin, error) {
	switch OriginKind(kind) {
	case OriginManual, "":
		if reference != "" {
			return Origin{}, fmt.Errorf("%w: manual order with payment reference", ErrValidation)
		}
		return Manual(), nil
	case OriginGatewayVerified:
		if reference == "" {
			return Origin{}, fmt.Errorf("%w: verified order without payment reference", ErrValidation)
		}
		return GatewayVerified(reference), nil
	}
	return Origin{}, fmt.Errorf("%w: unknown origin %q", ErrValidation, kind)
}

func (o Origin) Kind() OriginKind {
	if o.kind == "" {
		return OriginManual
	}
	return o.kind
}

func (o Origin) Reference() string { return o.reference }

func (o Origin) IsGatewayVerified() bool { return o.kind == OriginGatewayVerified }

func (o Origin) String() string { return string(o.Kind()) }
