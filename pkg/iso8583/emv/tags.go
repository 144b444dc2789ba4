package emv

import "strings"

// tagNames maps well-known EMV tags to their names.
var tagNames = map[string]string{
	"42":   "Issuer Identification Number (IIN)",
	"4F":   "Application Identifier (AID)",
	"50":   "Application Label",
	"57":   "Track 2 Equivalent Data",
	"5A":   "Application PAN",
	"5F20": "Cardholder Name",
	"5F24": "Application Expiration Date",
	"5F25": "Application Effective Date",
	"5F28": "Issuer Country Code",
	"5F2A": "Transaction Currency Code",
	"5F2D": "Language Preference",
	"5F34": "PAN Sequence Number",
	"70":   "EMV Proprietary Template",
	"71":   "Issuer Script Template 1",
	"72":   "Issuer Script Template 2",
	"77":   "Response Message Template Format 2",
	"80":   "Response Message Template Format 1",
	"82":   "Application Interchange Profile (AIP)",
	"84":   "Dedicated File (DF) Name",
	"87":   "Application Priority Indicator",
	"88":   "Short File Identifier (SFI)",
	"89":   "Authorization Code",
	"8A":   "Authorization Response Code",
	"8C":   "Card Risk Management Data Object List 1 (CDOL1)",
	"8D":   "Card Risk Management Data Object List 2 (CDOL2)",
	"8E":   "Cardholder Verification Method (CVM) List",
	"8F":   "Certification Authority Public Key Index",
	"90":   "Issuer Public Key Certificate",
	"91":   "Issuer Authentication Data",
	"92":   "Issuer Public Key Remainder",
	"93":   "Signed Static Application Data",
	"94":   "Application File Locator (AFL)",
	"95":   "Terminal Verification Results (TVR)",
	"97":   "Transaction Certificate Data Object List (TDOL)",
	"98":   "Transaction Certificate (TC) Hash Value",
	"99":   "Transaction PIN Data",
	"9A":   "Transaction Date",
	"9B":   "Transaction Status Information (TSI)",
	"9C":   "Transaction Type",
	"9F01": "Acquirer Identifier",
	"9F02": "Amount, Authorized (Numeric)",
	"9F03": "Amount, Other (Numeric)",
	"9F06": "Application Identifier (AID) - Terminal",
	"9F07": "Application Usage Control",
	"9F08": "Application Version Number - Card",
	"9F09": "Application Version Number - Terminal",
	"9F0D": "Issuer Action Code - Default",
	"9F0E": "Issuer Action Code - Denial",
	"9F0F": "Issuer Action Code - Online",
	"9F10": "Issuer Application Data",
	"9F11": "Issuer Code Table Index",
	"9F12": "Application Preferred Name",
	"9F13": "Last Online ATC Register",
	"9F14": "Lower Consecutive Offline Limit",
	"9F15": "Merchant Category Code",
	"9F16": "Merchant Identifier",
	"9F17": "PIN Try Counter",
	"9F1A": "Terminal Country Code",
	"9F1B": "Terminal Floor Limit",
	"9F1C": "Terminal Identification",
	"9F1D": "Terminal Risk Management Data",
	"9F1E": "Interface Device (IFD) Serial Number",
	"9F21": "Transaction Time",
	"9F23": "Upper Consecutive Offline Limit",
	"9F26": "Application Cryptogram",
	"9F27": "Cryptogram Information Data",
	"9F32": "Issuer Public Key Exponent",
	"9F33": "Terminal Capabilities",
	"9F34": "Cardholder Verification Method (CVM) Results",
	"9F35": "Terminal Type",
	"9F36": "Application Transaction Counter (ATC)",
	"9F37": "Unpredictable Number",
	"9F38": "Processing Options Data Object List (PDOL)",
	"9F39": "POS Entry Mode",
	"9F40": "Additional Terminal Capabilities",
	"9F41": "Transaction Sequence Counter",
	"9F42": "Application Currency Code",
	"9F45": "Data Authentication Code",
	"9F46": "ICC Public Key Certificate",
	"9F47": "ICC Public Key Exponent",
	"9F48": "ICC Public Key Remainder",
	"9F4A": "Static Data Authentication Tag List",
	"9F4B": "Signed Dynamic Application Data",
	"9F4C": "ICC Dynamic Number",
	"9F4D": "Log Entry",
	"9F4E": "Merchant Name and Location",
	"9F53": "Transaction Category Code",
	"9F5B": "Issuer Script Results",
	"9F66": "Terminal Transaction Qualifiers (TTQ)",
	"9F6C": "Card Transaction Qualifiers (CTQ)",
	"9F6E": "Form Factor Indicator",
	"DF01": "Proprietary Data Element",
}

// TagName returns the name of a well-known EMV tag, or "Unknown".
func TagName(tag string) string {
	if name, ok := tagNames[strings.ToUpper(tag)]; ok {
		return name
	}
	return "Unknown"
}
