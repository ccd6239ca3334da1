package domain

import "strings"

// countryNames is the canonical list used by both location-extraction passes.
// Order matters for the substring scan: the first name whose lowercase form
// appears in the text wins, so ambiguous multi-country text resolves to the
// earliest list entry. Plain English short names are used because feed text
// never spells out formal state names.
var countryNames = []string{
	"Afghanistan", "Albania", "Algeria", "Andorra", "Angola",
	"Antigua and Barbuda", "Argentina", "Armenia", "Australia", "Austria",
	"Azerbaijan", "Bahamas", "Bahrain", "Bangladesh", "Barbados",
	"Belarus", "Belgium", "Belize", "Benin", "Bhutan",
	"Bolivia", "Bosnia and Herzegovina", "Botswana", "Brazil", "Brunei",
	"Bulgaria", "Burkina Faso", "Burundi", "Cabo Verde", "Cambodia",
	"Cameroon", "Canada", "Central African Republic", "Chad", "Chile",
	"China", "Colombia", "Comoros", "Congo", "Costa Rica",
	"Croatia", "Cuba", "Cyprus", "Czechia", "Czech Republic",
	"Denmark", "Djibouti", "Dominica", "Dominican Republic", "Ecuador",
	"Egypt", "El Salvador", "Equatorial Guinea", "Eritrea", "Estonia",
	"Eswatini", "Ethiopia", "Fiji", "Finland", "France",
	"Gabon", "Gambia", "Georgia", "Germany", "Ghana",
	"Greece", "Greenland", "Grenada", "Guatemala", "Guinea-Bissau",
	"Guinea", "Guyana", "Haiti", "Honduras", "Hungary",
	"Iceland", "India", "Indonesia", "Iran", "Iraq",
	"Ireland", "Israel", "Italy", "Ivory Coast", "Jamaica",
	"Japan", "Jordan", "Kazakhstan", "Kenya", "Kiribati",
	"Kosovo", "Kuwait", "Kyrgyzstan", "Laos", "Latvia",
	"Lebanon", "Lesotho", "Liberia", "Libya", "Liechtenstein",
	"Lithuania", "Luxembourg", "Madagascar", "Malawi", "Malaysia",
	"Maldives", "Mali", "Malta", "Marshall Islands", "Mauritania",
	"Mauritius", "Mexico", "Micronesia", "Moldova", "Monaco",
	"Mongolia", "Montenegro", "Morocco", "Mozambique", "Myanmar",
	"Namibia", "Nauru", "Nepal", "Netherlands", "New Zealand",
	"Nicaragua", "Nigeria", "Niger", "North Korea", "North Macedonia",
	"Norway", "Oman", "Pakistan", "Palau", "Palestine",
	"Panama", "Papua New Guinea", "Paraguay", "Peru", "Philippines",
	"Poland", "Portugal", "Qatar", "Romania", "Russia",
	"Rwanda", "Saint Kitts and Nevis", "Saint Lucia",
	"Saint Vincent and the Grenadines", "Samoa", "San Marino",
	"Sao Tome and Principe", "Saudi Arabia", "Senegal", "Serbia",
	"Seychelles", "Sierra Leone", "Singapore", "Slovakia", "Slovenia",
	"Solomon Islands", "Somalia", "South Africa", "South Korea",
	"South Sudan", "Spain", "Sri Lanka", "Sudan", "Suriname",
	"Sweden", "Switzerland", "Syria", "Taiwan", "Tajikistan",
	"Tanzania", "Thailand", "Timor-Leste", "Togo", "Tonga",
	"Trinidad and Tobago", "Tunisia", "Turkey", "Turkmenistan", "Tuvalu",
	"Uganda", "Ukraine", "United Arab Emirates", "United Kingdom",
	"United States", "Uruguay", "Uzbekistan", "Vanuatu", "Venezuela",
	"Vietnam", "Yemen", "Zambia", "Zimbabwe",
}

// countryByLower maps lowercase names back to their canonical spelling.
var countryByLower = func() map[string]string {
	m := make(map[string]string, len(countryNames))
	for _, name := range countryNames {
		m[strings.ToLower(name)] = name
	}
	return m
}()

func isCountryName(s string) bool {
	_, ok := countryByLower[strings.ToLower(s)]
	return ok
}

func canonicalCountry(s string) string {
	return countryByLower[strings.ToLower(s)]
}

// matchCountry returns the first canonical country name that appears as a
// case-insensitive substring of the text, or "" when none does.
func matchCountry(text string) string {
	lower := strings.ToLower(text)
	for _, name := range countryNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}
