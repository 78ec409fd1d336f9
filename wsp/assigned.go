package wsp

import "fmt"

// PDU Type Assignments, WAP-230-WSP Appendix A Table 34.
const (
	PDUConnect       = 0x01
	PDUConnectReply  = 0x02
	PDURedirect      = 0x03
	PDUReply         = 0x04
	PDUDisconnect    = 0x05
	PDUPush          = 0x06
	PDUConfirmedPush = 0x07
	PDUSuspend       = 0x08
	PDUResume        = 0x09
	PDUGet           = 0x40
	PDUPost          = 0x60
)

// Header field name assignments used by the push decoder (Table 39).
const (
	FieldContentType       = 0x11
	FieldXWapApplicationID = 0x2f
	FieldXWapContentURI    = 0x30
	FieldXWapInitiatorURI  = 0x31
	FieldPushFlag          = 0x34
)

// Well-Known Parameter Assignments (Table 38).
const (
	ParamQ       = 0x00
	ParamCharset = 0x01
	ParamLevel   = 0x02
	ParamType    = 0x03
	ParamName    = 0x17
	ParamStart   = 0x19
)

var parameterNames = map[uint32]string{
	0x00: "Q",
	0x01: "Charset",
	0x02: "Level",
	0x03: "Type",
	0x05: "Name",
	0x06: "Filename",
	0x07: "Differences",
	0x08: "Padding",
	0x09: "Type",
	0x0a: "Start",
	0x0b: "Start-info",
	0x0c: "Comment",
	0x0d: "Domain",
	0x0e: "Max-Age",
	0x0f: "Path",
	0x10: "Secure",
	0x11: "SEC",
	0x12: "MAC",
	0x13: "Creation-date",
	0x14: "Modification-date",
	0x15: "Read-date",
	0x16: "Size",
	0x17: "Name",
	0x18: "Filename",
	0x19: "Start",
	0x1a: "Start-info",
	0x1b: "Comment",
	0x1c: "Domain",
	0x1d: "Path",
}

// ParameterName returns the name of a well-known parameter token.
func ParameterName(code uint32) string {
	if name, ok := parameterNames[code]; ok {
		return name
	}
	return fmt.Sprintf("unassigned/0x%x", code)
}

// Content Type Assignments (Table 40) plus the registered extensions
// above 0x0200.
var mediaTypes = map[int64]string{
	0x00: "*/*",
	0x01: "text/*",
	0x02: "text/html",
	0x03: "text/plain",
	0x04: "text/x-hdml",
	0x05: "text/x-ttml",
	0x06: "text/x-vCalendar",
	0x07: "text/x-vCard",
	0x08: "text/vnd.wap.wml",
	0x09: "text/vnd.wap.wmlscript",
	0x0a: "text/vnd.wap.wta-event",
	0x0b: "multipart/*",
	0x0c: "multipart/mixed",
	0x0d: "multipart/form-data",
	0x0e: "multipart/byterantes",
	0x0f: "multipart/alternative",
	0x10: "application/*",
	0x11: "application/java-vm",
	0x12: "application/x-www-form-urlencoded",
	0x13: "application/x-hdmlc",
	0x14: "application/vnd.wap.wmlc",
	0x15: "application/vnd.wap.wmlscriptc",
	0x16: "application/vnd.wap.wta-eventc",
	0x17: "application/vnd.wap.uaprof",
	0x18: "application/vnd.wap.wtls-ca-certificate",
	0x19: "application/vnd.wap.wtls-user-certificate",
	0x1a: "application/x-x509-ca-cert",
	0x1b: "application/x-x509-user-cert",
	0x1c: "image/*",
	0x1d: "image/gif",
	0x1e: "image/jpeg",
	0x1f: "image/tiff",
	0x20: "image/png",
	0x21: "image/vnd.wap.wbmp",
	0x22: "application/vnd.wap.multipart.*",
	0x23: "application/vnd.wap.multipart.mixed",
	0x24: "application/vnd.wap.multipart.form-data",
	0x25: "application/vnd.wap.multipart.byteranges",
	0x26: "application/vnd.wap.multipart.alternative",
	0x27: "application/xml",
	0x28: "text/xml",
	0x29: "application/vnd.wap.wbxml",
	0x2a: "application/x-x968-cross-cert",
	0x2b: "application/x-x968-ca-cert",
	0x2c: "application/x-x968-user-cert",
	0x2d: "text/vnd.wap.si",
	0x2e: "application/vnd.wap.sic",
	0x2f: "text/vnd.wap.sl",
	0x30: "application/vnd.wap.slc",
	0x31: "text/vnd.wap.co",
	0x32: "application/vnd.wap.coc",
	0x33: "application/vnd.wap.multipart.related",
	0x34: "application/vnd.wap.sia",
	0x35: "text/vnd.wap.connectivity-xml",
	0x36: "application/vnd.wap.connectivity-wbxml",
	0x37: "application/pkcs7-mime",
	0x38: "application/vnd.wap.hashed-certificate",
	0x39: "application/vnd.wap.signed-certificate",
	0x3a: "application/vnd.wap.cert-response",
	0x3b: "application/xhtml+xml",
	0x3c: "application/wml+xml",
	0x3d: "text/css",
	0x3e: "application/vnd.wap.mms-message",
	0x3f: "application/vnd.wap.rollover-certificate",
	0x40: "application/vnd.wap.locc+wbxml",
	0x41: "application/vnd.wap.loc+xml",
	0x42: "application/vnd.syncml.dm+wbxml",
	0x43: "application/vnd.syncml.dm+xml",
	0x44: "application/vnd.syncml.notification",
	0x45: "application/vnd.wap.xhtml+xml",
	0x46: "application/vnd.wv.csp.cir",
	0x47: "application/vnd.oma.dd+xml",
	0x48: "application/vnd.oma.drm.message",
	0x49: "application/vnd.oma.drm.content",
	0x4a: "application/vnd.oma.drm.rights+xml",
	0x4b: "application/vnd.oma.drm.rights+wbxml",
	0x4c: "application/vnd.wv.csp+xml",
	0x4d: "application/vnd.wv.csp+wbxml",
	0x4e: "application/vnd.syncml.ds.notification",
	0x4f: "audio/*",
	0x50: "video/*",
	0x51: "application/vnd.oma.dd2+xml",
	0x52: "application/mikey",
	0x53: "application/vnd.oma.dcd",
	0x54: "application/vnd.oma.dcdc",

	0x0201: "application/vnd.uplanet.cacheop-wbxml",
	0x0202: "application/vnd.uplanet.signal",
	0x0203: "application/vnd.uplanet.alert-wbxml",
	0x0204: "application/vnd.uplanet.list-wbxml",
	0x0205: "application/vnd.uplanet.listcmd-wbxml",
	0x0206: "application/vnd.uplanet.channel-wbxml",
	0x0207: "application/vnd.uplanet.provisioning-status-uri",
	0x0208: "x-wap.multipart/vnd.uplanet.header-set",
	0x0209: "application/vnd.uplanet.bearer-choice-wbxml",
	0x020a: "application/vnd.phonecom.mmc-wbxml",
	0x020b: "application/vnd.nokia.syncset+wbxml",
	0x020c: "image/x-up-wpng",
}

var mediaCodes = func() map[string]int64 {
	m := make(map[string]int64, len(mediaTypes))
	for code, name := range mediaTypes {
		m[name] = code
	}
	return m
}()

// MediaTypeName returns the media type assigned to code, or "" if code has
// no assignment.
func MediaTypeName(code int64) string {
	return mediaTypes[code]
}

// MediaTypeCode returns the well-known code for a media type, or -1.
func MediaTypeCode(mediaType string) int64 {
	if code, ok := mediaCodes[mediaType]; ok {
		return code
	}
	return -1
}

// Push Application ID assignments (WINA registry).
var applicationIDs = map[uint32]string{
	0x00: "x-wap-application:*",
	0x01: "x-wap-application:push.sia",
	0x02: "x-wap-application:wml.ua",
	0x03: "x-wap-application:wta.ua",
	0x04: "x-wap-application:mms.ua",
	0x05: "x-wap-application:push.syncml",
	0x06: "x-wap-application:loc.ua",
	0x07: "x-wap-application:syncml.dm",
	0x08: "x-wap-application:drm.ua",
	0x09: "x-wap-application:emn.ua",
	0x0a: "x-wap-application:wv.ua",
}

// ApplicationIDName returns the URN registered for a numeric push
// application id.
func ApplicationIDName(code uint32) (string, bool) {
	name, ok := applicationIDs[code]
	return name, ok
}
