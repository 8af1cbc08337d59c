package gradevue

import (
	"fmt"
	"strings"

	"github.com/clbanning/mxj/v2"
	"golang.org/x/net/html"
)

const (
	nullReferenceFault = "System.NullReferenceException"
	serviceErrorField  = "RT_ERROR"
)

// decodeSVUEResponse turns a ProcessWebServiceRequest response body into the
// Gradebook subtree. The service escapes the XML it returns, so the body is
// unescaped before decoding. A nil Document with a nil error means the service
// answered with one of its fault sentinels instead of a gradebook.
func decodeSVUEResponse(body string) (Document, error) {
	unescaped := html.UnescapeString(body)

	if strings.Contains(unescaped, nullReferenceFault) {
		return nil, nil
	}

	m, err := mxj.NewMapXml([]byte(unescaped))

	if err != nil {
		return nil, fmt.Errorf("%w: decode xml: %w", ErrUnexpectedResponse, err)
	}

	root, ok := record(m).child("string")

	if !ok {
		return nil, fmt.Errorf("%w: missing string element", ErrUnexpectedResponse)
	}

	if _, ok := root[serviceErrorField]; ok {
		return nil, nil
	}

	gb, ok := root.child("Gradebook")

	if !ok {
		return nil, fmt.Errorf("%w: missing Gradebook element", ErrUnexpectedResponse)
	}

	return Document(gb), nil
}
