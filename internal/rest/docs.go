package rest

// Static protocol documentation returned for GET <route>?documentation=true.
// The text follows the IR remote's printed code table and observed
// controller behavior; it is identical on every call.

const serviceBanner = "IR Controlled LED Strip Web Service\n\n"

const routeListing = serviceBanner +
	"Routes:\n" +
	"\t- / (GET) Arguments: none\n" +
	"\t- /routes (GET) Arguments: none\n" +
	"\t- /cached-state (GET) Arguments : none\n" +
	"\t- /moisture (GET) Arguments:[boolean] or none\n" +
	"\t- /raw (GET) Arguments:[boolean] or none, (POST) Arguments:[byte]\n" +
	"\t- /brightness (GET) Arguments:[boolean] or none, (POST) Arguments:[string]\n" +
	"\t- /power (GET) Arguments:[boolean] or none, (POST) Arguments:[string]\n" +
	"\t- /function (GET) Arguments:[boolean] or none, (POST) Arguments:[string]\n" +
	"\t- /color (GET) Arguments:[boolean] or none, (POST) Arguments:[string]\n"

const specialFunctionNotes = "Special functions have a unique property depending if one send the" +
	" command after it is already in the selected mode. The following lists" +
	" describes this behavior.\n" +
	"  - Pressing Flash once does same action as smooth\n" +
	"  - Pressing Flash twice strobes between color transitions of flash 1.\n" +
	"  - Pressing Strobe once strobes currently displayed color\n" +
	"  - Pressing Strobe twice smoothly changes brightness of static color.\n" +
	"  - Pressing fade once fades between all colors\n" +
	"  - Pressing fade twice fades only an rgb single cycling them.\n" +
	"  - Pressing smooth once transitions between all colors abruptly.\n" +
	"  - Pressing smooth twice flashes only an rgb single cycling them.\n"

const brightnessTickNotes = "Brightness adjustment is measured in ticks. To move from brightest" +
	" to least will take 9 ticks.\n" +
	"\n" +
	"Brightness adjustment will act as expected for static colors. However " +
	"when running a special function the brightness adjustment will alter " +
	"the transition speed of the current function.\n" +
	"  - During Flash increases/decreases transition speed (9 ticks)\n" +
	"  - During Strobe increases/decreases transition speed (9 ticks)\n" +
	"  - During Fade increases/decreases transition speed (9 ticks)\n" +
	"  - During Smooth increases/decreases transition speed (9 ticks)\n"

const rawDocumentation = serviceBanner +
	"Raw command expects POST request with a single arguement. " +
	"The contents of this argument will be a byte code from " +
	"table below.\n\n" +
	"    Hex Value | Name\n" +
	"    ----------|----------------\n" +
	"    x04       | Brightness-Down\n" +
	"    x05       | Brightness-Up\n" +
	"    x06       | Off\n" +
	"    x07       | On\n" +
	"    x08       | ~Green\n" +
	"    x09       | ~Red\n" +
	"    x0A       | ~Blue\n" +
	"    x0B       | ~White\n" +
	"    x0C       | ~Pea Green\n" +
	"    x0D       | ~Orange\n" +
	"    x0E       | ~Dark Orchid\n" +
	"    x0F       | Flash Function\n" +
	"    x10       | ~Cyan\n" +
	"    x11       | ~Dark Yellow\n" +
	"    x12       | ~Magenta\n" +
	"    x13       | Fade Function\n" +
	"    x14       | ~Light Blue\n" +
	"    x15       | ~Yellow\n" +
	"    x16       | ~Pink\n" +
	"    x17       | Strobe Function\n" +
	"    x18       | ~Sky Blue\n" +
	"    x19       | ~Light Yellow\n" +
	"    x1A       | ~Purple\n" +
	"    x1B       | Smooth Function\n" +
	"\n" +
	specialFunctionNotes +
	"\n" +
	brightnessTickNotes

const brightnessDocumentation = serviceBanner +
	"Brightness command expects POST request with a single arguement. " +
	"The contents of this argument will be a string enumeration from " +
	"table below.\n\n" +
	"   String | Behavior\n" +
	"   -------|----------------------------------\n" +
	"   up     | Shifts LED brightness up a step  \n" +
	"   down   | Shifts LED brightness down a step\n" +
	"\n" +
	brightnessTickNotes

const powerDocumentation = serviceBanner +
	"Power command expects POST request with a single arguement. " +
	"The contents of this argument will be a string enumeration from " +
	"table below.\n\n" +
	"   String | Behavior\n" +
	"   -------|-------------------------------------\n" +
	"   on     | Commands LED controller to ON state \n" +
	"   off    | Commands LED controller to OFF state\n"

const functionDocumentation = serviceBanner +
	"Function command expects POST request with a single arguement. " +
	"The contents of this argument will be a string enumeration from " +
	"table below.\n\n" +
	"   String | Behavior\n" +
	"   -------|--------------------------------------------\n" +
	"   flash  | Flash a subset of preselected colors (Note)\n" +
	"   strobe | Strobe last static color selected (Note)   \n" +
	"   fade   | Fade last static color selected (Note)     \n" +
	"   smooth | Smooth last static color selected (Note)   \n" +
	"\n" +
	specialFunctionNotes

const colorDocumentation = serviceBanner +
	"Color command expects POST request with a single arguement. " +
	"The contents of this argument will be a string enumeration from " +
	"list below.\n\n" +
	"   - white\n" +
	"   - red\n" +
	"   - orange\n" +
	"   - dark-yellow\n" +
	"   - yellow\n" +
	"   - light-yellow\n" +
	"   - green\n" +
	"   - pea-green\n" +
	"   - cyan\n" +
	"   - light-blue\n" +
	"   - sky-blue\n" +
	"   - blue\n" +
	"   - dark-orchid\n" +
	"   - purple\n" +
	"   - magenta\n" +
	"   - pink\n"

const moistureDocumentation = serviceBanner +
	"Moisture command expects a GET request with no arguments. The response " +
	"reports the latest raw reading from the analog soil moisture sensor as " +
	"a value between 0 and 1023. Higher values indicate drier soil on the " +
	"stock voltage divider.\n"

// categoryDocs maps a category route's argument name to its documentation.
var categoryDocs = map[string]string{
	"brightness": brightnessDocumentation,
	"power":      powerDocumentation,
	"function":   functionDocumentation,
	"color":      colorDocumentation,
}
