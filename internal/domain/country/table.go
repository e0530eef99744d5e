package country

// defaultTable maps each ISO alpha-2 code to the names it is known by across
// the product's data sources: the statistics feed uses free-text labels, the
// world-boundaries geometry dataset uses its own spellings (e.g. "Bosnia and
// Herz.", "Dominican Rep."), and historical scrapes carry yet more variants.
// The first entry per code is the canonical display name.
var defaultTable = map[string][]string{
	"US": {"United States of America", "United States", "USA"},
	"CA": {"Canada"},
	"MX": {"Mexico"},
	"GB": {"United Kingdom", "UK", "Great Britain"},
	"DE": {"Germany"},
	"FR": {"France"},
	"IT": {"Italy"},
	"ES": {"Spain"},
	"NL": {"Netherlands"},
	"BE": {"Belgium"},
	"CH": {"Switzerland"},
	"AT": {"Austria"},
	"SE": {"Sweden"},
	"NO": {"Norway"},
	"DK": {"Denmark"},
	"FI": {"Finland"},
	"PL": {"Poland"},
	"CZ": {"Czech Republic", "Czechia"},
	"PT": {"Portugal"},
	"IE": {"Ireland"},
	"GR": {"Greece"},
	"HU": {"Hungary"},
	"RO": {"Romania"},
	"BG": {"Bulgaria"},
	"HR": {"Croatia"},
	"SK": {"Slovakia"},
	"SI": {"Slovenia"},
	"RS": {"Serbia"},
	"BA": {"Bosnia and Herzegovina", "Bosnia and Herz."},
	"AL": {"Albania"},
	"MK": {"North Macedonia", "Macedonia"},
	"ME": {"Montenegro"},
	"XK": {"Kosovo"},
	"EE": {"Estonia"},
	"LV": {"Latvia"},
	"LT": {"Lithuania"},
	"BY": {"Belarus"},
	"MD": {"Moldova"},
	"RU": {"Russia", "Russian Federation"},
	"UA": {"Ukraine"},
	"AU": {"Australia"},
	"NZ": {"New Zealand"},
	"JP": {"Japan"},
	"KR": {"South Korea", "Korea, Republic of", "Republic of Korea"},
	"KP": {"North Korea", "Korea, Democratic People's Republic of"},
	"CN": {"China", "People's Republic of China"},
	"IN": {"India"},
	"TW": {"Taiwan"},
	"HK": {"Hong Kong"},
	"SG": {"Singapore"},
	"MY": {"Malaysia"},
	"TH": {"Thailand"},
	"ID": {"Indonesia"},
	"PH": {"Philippines"},
	"VN": {"Vietnam", "Viet Nam"},
	"MM": {"Myanmar", "Burma"},
	"BD": {"Bangladesh"},
	"PK": {"Pakistan"},
	"LK": {"Sri Lanka"},
	"NP": {"Nepal"},
	"BR": {"Brazil"},
	"AR": {"Argentina"},
	"CL": {"Chile"},
	"CO": {"Colombia"},
	"PE": {"Peru"},
	"VE": {"Venezuela"},
	"EC": {"Ecuador"},
	"BO": {"Bolivia"},
	"PY": {"Paraguay"},
	"UY": {"Uruguay"},
	"ZA": {"South Africa"},
	"EG": {"Egypt"},
	"NG": {"Nigeria"},
	"KE": {"Kenya"},
	"MA": {"Morocco"},
	"DZ": {"Algeria"},
	"TN": {"Tunisia"},
	"LY": {"Libya"},
	"GH": {"Ghana"},
	"ET": {"Ethiopia"},
	"TZ": {"Tanzania", "United Republic of Tanzania"},
	"UG": {"Uganda"},
	"SD": {"Sudan"},
	"SA": {"Saudi Arabia"},
	"AE": {"United Arab Emirates", "UAE"},
	"IL": {"Israel"},
	"TR": {"Turkey", "Türkiye"},
	"IR": {"Iran", "Islamic Republic of Iran"},
	"IQ": {"Iraq"},
	"JO": {"Jordan"},
	"LB": {"Lebanon"},
	"SY": {"Syria", "Syrian Arab Republic"},
	"KW": {"Kuwait"},
	"QA": {"Qatar"},
	"BH": {"Bahrain"},
	"OM": {"Oman"},
	"YE": {"Yemen"},
	"AF": {"Afghanistan"},
	"KZ": {"Kazakhstan"},
	"UZ": {"Uzbekistan"},
	"TM": {"Turkmenistan"},
	"AZ": {"Azerbaijan"},
	"GE": {"Georgia"},
	"AM": {"Armenia"},
	"CY": {"Cyprus"},
	"MT": {"Malta"},
	"IS": {"Iceland"},
	"LU": {"Luxembourg"},
	"MC": {"Monaco"},
	"AD": {"Andorra"},
	"LI": {"Liechtenstein"},
	"SM": {"San Marino"},
	"VA": {"Vatican City", "Holy See"},
	"PA": {"Panama"},
	"CR": {"Costa Rica"},
	"NI": {"Nicaragua"},
	"HN": {"Honduras"},
	"SV": {"El Salvador"},
	"GT": {"Guatemala"},
	"BZ": {"Belize"},
	"CU": {"Cuba"},
	"JM": {"Jamaica"},
	"HT": {"Haiti"},
	"DO": {"Dominican Republic", "Dominican Rep."},
	"PR": {"Puerto Rico"},
	"TT": {"Trinidad and Tobago"},
}
