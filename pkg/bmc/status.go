package bmc

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/davidroman0O/smcipmi/errors"
	"golang.org/x/net/html/charset"
)

const (
	statusLoginFailed = "Unknown - Login Failed"
	statusInvalidXML  = "Error - Invalid XML response"
)

// xmlNode is a generic element tree used to walk the POWER_INFO reply
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []xmlNode  `xml:",any"`
}

func (n *xmlNode) child(name string) *xmlNode {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

func (n *xmlNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// powerInfo locates POWER_INFO either as the document root or directly under it
func (n *xmlNode) powerInfo() *xmlNode {
	if n.XMLName.Local == "POWER_INFO" {
		return n
	}
	return n.child("POWER_INFO")
}

// parsePowerStatus extracts the raw POWER_INFO/POWER@STATUS value. A missing
// element or attribute yields an empty string, not an error. The body must be
// a single well-formed document: text or elements outside the root are rejected.
func parsePowerStatus(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel

	root, err := decodeDocument(dec)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrDecode, "invalid XML response")
	}

	info := root.powerInfo()
	if info == nil {
		return "", nil
	}
	power := info.child("POWER")
	if power == nil {
		return "", nil
	}
	status, _ := power.attr("STATUS")
	return status, nil
}

// decodeDocument reads the prolog, the root element and the trailing misc
// section of dec, failing on anything but comments, processing instructions
// and whitespace around the root.
func decodeDocument(dec *xml.Decoder) (*xmlNode, error) {
	var root *xmlNode

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if root == nil {
				return nil, fmt.Errorf("no root element")
			}
			return root, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil {
				return nil, fmt.Errorf("unexpected element <%s> after the root element", t.Name.Local)
			}
			root = &xmlNode{}
			if err := dec.DecodeElement(root, &t); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return nil, fmt.Errorf("unexpected end element </%s>", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("unexpected text %q outside the root element", string(t))
			}
		case xml.Directive:
			if root != nil {
				return nil, fmt.Errorf("unexpected directive after the root element")
			}
		}
	}
}

// decodeStatus is DecodeStatus that also returns the decoding error, if any
func decodeStatus(body []byte, checkedAt time.Time) (ServerStatus, error) {
	status := ServerStatus{LastChecked: checkedAt}

	raw, err := parsePowerStatus(body)
	if err != nil {
		status.PowerState = statusInvalidXML
		return status, err
	}

	switch strings.ToUpper(raw) {
	case "ON":
		status.IsOn = true
		status.PowerState = string(PowerStateOn)
	case "OFF":
		status.PowerState = string(PowerStateOff)
	default:
		status.PowerState = fmt.Sprintf("Unknown - Status: %s", raw)
	}

	return status, nil
}

// DecodeStatus turns a POWER_INFO reply into a ServerStatus stamped with checkedAt.
// It never fails: undecodable input is reported through PowerState.
func DecodeStatus(body []byte, checkedAt time.Time) ServerStatus {
	status, _ := decodeStatus(body, checkedAt)
	return status
}

// GetServerStatus queries the power state, logging in first when needed
func (c *Client) GetServerStatus(ctx context.Context) ServerStatus {
	checkedAt := c.now().UTC()
	log := c.opLogger("status")

	if !c.ensureSession(ctx, log) {
		return ServerStatus{PowerState: statusLoginFailed, LastChecked: checkedAt}
	}

	resp, err := c.do(ctx, http.MethodPost, ipmiPath, powerInfoForm(0, 0))
	if err != nil {
		failureLogger(log, err).Error("Error getting server status")
		return ServerStatus{PowerState: fmt.Sprintf("Error - %v", err), LastChecked: checkedAt}
	}

	if !resp.OK() {
		err := errors.WithContext(
			errors.New(errors.ErrProtocol, fmt.Sprintf("unexpected status code %d", resp.StatusCode)),
			map[string]interface{}{"status_code": resp.StatusCode},
		)
		failureLogger(log, err).Error("Failed to get server status")
		return ServerStatus{
			PowerState:  fmt.Sprintf("Error - Status Code: %d", resp.StatusCode),
			LastChecked: checkedAt,
		}
	}

	status, err := decodeStatus(resp.Body, checkedAt)
	if err != nil {
		failureLogger(log, err).WithField("body", string(resp.Body)).Error("Failed to parse XML response")
		return status
	}

	log.WithField("power_state", status.PowerState).Info("Server status retrieved")
	return status
}
