package command

import "net/http"

// Command identifiers. The string values are the names used on the wire by
// the reference bindings, so vendor extensions can be keyed the same way.
const (
	Status         = "status"
	NewSession     = "newSession"
	GetAllSessions = "getAllSessions"
	Quit           = "quit"

	Get           = "get"
	GoBack        = "goBack"
	GoForward     = "goForward"
	Refresh       = "refresh"
	GetCurrentURL = "getCurrentUrl"
	GetTitle      = "getTitle"
	GetPageSource = "getPageSource"
	PrintPage     = "printPage"

	ExecuteScript         = "executeScript"
	ExecuteAsyncScript    = "executeAsyncScript"
	W3CExecuteScript      = "w3cExecuteScript"
	W3CExecuteScriptAsync = "w3cExecuteScriptAsync"

	Screenshot        = "screenshot"
	ElementScreenshot = "elementScreenshot"

	FindElement               = "findElement"
	FindElements              = "findElements"
	FindChildElement          = "findChildElement"
	FindChildElements         = "findChildElements"
	GetActiveElement          = "getActiveElement"
	W3CGetActiveElement       = "w3cGetActiveElement"
	GetShadowRoot             = "getShadowRoot"
	FindElementFromShadowRoot = "findElementFromShadowRoot"
	FindElementsFromShadow    = "findElementsFromShadowRoot"

	ClickElement                 = "clickElement"
	ClearElement                 = "clearElement"
	SubmitElement                = "submitElement"
	SendKeysToElement            = "sendKeysToElement"
	SendKeysToActiveElement      = "sendKeysToActiveElement"
	UploadFile                   = "uploadFile"
	GetElementText               = "getElementText"
	GetElementValue              = "getElementValue"
	GetElementTagName            = "getElementTagName"
	IsElementSelected            = "isElementSelected"
	IsElementEnabled             = "isElementEnabled"
	IsElementDisplayed           = "isElementDisplayed"
	GetElementLocation           = "getElementLocation"
	GetElementLocationInView     = "getElementLocationOnceScrolledIntoView"
	GetElementSize               = "getElementSize"
	GetElementRect               = "getElementRect"
	GetElementAttribute          = "getElementAttribute"
	GetElementProperty           = "getElementProperty"
	GetElementValueOfCSSProperty = "getElementValueOfCssProperty"
	GetElementAriaRole           = "getElementAriaRole"
	GetElementAriaLabel          = "getElementAriaLabel"

	GetAllCookies    = "getCookies"
	GetCookie        = "getCookie"
	AddCookie        = "addCookie"
	DeleteCookie     = "deleteCookie"
	DeleteAllCookies = "deleteAllCookies"

	SwitchToFrame       = "switchToFrame"
	SwitchToParentFrame = "switchToParentFrame"
	SwitchToWindow      = "switchToWindow"
	NewWindow           = "newWindow"
	Close               = "close"

	GetCurrentWindowHandle    = "getCurrentWindowHandle"
	W3CGetCurrentWindowHandle = "w3cGetCurrentWindowHandle"
	GetWindowHandles          = "getWindowHandles"
	W3CGetWindowHandles       = "w3cGetWindowHandles"
	SetWindowSize             = "setWindowSize"
	GetWindowSize             = "getWindowSize"
	SetWindowPosition         = "setWindowPosition"
	GetWindowPosition         = "getWindowPosition"
	SetWindowRect             = "setWindowRect"
	GetWindowRect             = "getWindowRect"
	MaximizeWindow            = "windowMaximize"
	W3CMaximizeWindow         = "w3cMaximizeWindow"
	MinimizeWindow            = "minimizeWindow"
	FullscreenWindow          = "fullscreenWindow"

	ImplicitWait     = "implicitlyWait"
	SetScriptTimeout = "setScriptTimeout"
	SetTimeouts      = "setTimeouts"
	GetTimeouts      = "getTimeouts"

	DismissAlert        = "dismissAlert"
	W3CDismissAlert     = "w3cDismissAlert"
	AcceptAlert         = "acceptAlert"
	W3CAcceptAlert      = "w3cAcceptAlert"
	SetAlertValue       = "setAlertValue"
	W3CSetAlertValue    = "w3cSetAlertValue"
	GetAlertText        = "getAlertText"
	W3CGetAlertText     = "w3cGetAlertText"
	SetAlertCredentials = "setAlertCredentials"

	W3CActions      = "actions"
	W3CClearActions = "clearActionState"

	GetScreenOrientation = "getScreenOrientation"
	SetScreenOrientation = "setScreenOrientation"
	GetNetworkConnection = "getNetworkConnection"
	SetNetworkConnection = "setNetworkConnection"
	CurrentContextHandle = "getCurrentContextHandle"
	ContextHandles       = "getContextHandles"
	SwitchToContext      = "switchToContext"

	GetLog               = "getLog"
	GetAvailableLogTypes = "getAvailableLogTypes"
)

var baseCommands = map[string]Command{
	Status:         {http.MethodGet, "/status"},
	NewSession:     {http.MethodPost, "/session"},
	GetAllSessions: {http.MethodGet, "/sessions"},
	Quit:           {http.MethodDelete, "/session/{sessionId}"},

	Get:           {http.MethodPost, "/session/{sessionId}/url"},
	GoBack:        {http.MethodPost, "/session/{sessionId}/back"},
	GoForward:     {http.MethodPost, "/session/{sessionId}/forward"},
	Refresh:       {http.MethodPost, "/session/{sessionId}/refresh"},
	GetCurrentURL: {http.MethodGet, "/session/{sessionId}/url"},
	GetTitle:      {http.MethodGet, "/session/{sessionId}/title"},
	GetPageSource: {http.MethodGet, "/session/{sessionId}/source"},
	PrintPage:     {http.MethodPost, "/session/{sessionId}/print"},

	ExecuteScript:         {http.MethodPost, "/session/{sessionId}/execute"},
	ExecuteAsyncScript:    {http.MethodPost, "/session/{sessionId}/execute_async"},
	W3CExecuteScript:      {http.MethodPost, "/session/{sessionId}/execute/sync"},
	W3CExecuteScriptAsync: {http.MethodPost, "/session/{sessionId}/execute/async"},

	Screenshot:        {http.MethodGet, "/session/{sessionId}/screenshot"},
	ElementScreenshot: {http.MethodGet, "/session/{sessionId}/element/{id}/screenshot"},

	FindElement:               {http.MethodPost, "/session/{sessionId}/element"},
	FindElements:              {http.MethodPost, "/session/{sessionId}/elements"},
	FindChildElement:          {http.MethodPost, "/session/{sessionId}/element/{id}/element"},
	FindChildElements:         {http.MethodPost, "/session/{sessionId}/element/{id}/elements"},
	GetActiveElement:          {http.MethodPost, "/session/{sessionId}/element/active"},
	W3CGetActiveElement:       {http.MethodGet, "/session/{sessionId}/element/active"},
	GetShadowRoot:             {http.MethodGet, "/session/{sessionId}/element/{id}/shadow"},
	FindElementFromShadowRoot: {http.MethodPost, "/session/{sessionId}/shadow/{shadowId}/element"},
	FindElementsFromShadow:    {http.MethodPost, "/session/{sessionId}/shadow/{shadowId}/elements"},

	ClickElement:                 {http.MethodPost, "/session/{sessionId}/element/{id}/click"},
	ClearElement:                 {http.MethodPost, "/session/{sessionId}/element/{id}/clear"},
	SubmitElement:                {http.MethodPost, "/session/{sessionId}/element/{id}/submit"},
	SendKeysToElement:            {http.MethodPost, "/session/{sessionId}/element/{id}/value"},
	SendKeysToActiveElement:      {http.MethodPost, "/session/{sessionId}/keys"},
	UploadFile:                   {http.MethodPost, "/session/{sessionId}/file"},
	GetElementText:               {http.MethodGet, "/session/{sessionId}/element/{id}/text"},
	GetElementValue:              {http.MethodGet, "/session/{sessionId}/element/{id}/value"},
	GetElementTagName:            {http.MethodGet, "/session/{sessionId}/element/{id}/name"},
	IsElementSelected:            {http.MethodGet, "/session/{sessionId}/element/{id}/selected"},
	IsElementEnabled:             {http.MethodGet, "/session/{sessionId}/element/{id}/enabled"},
	IsElementDisplayed:           {http.MethodGet, "/session/{sessionId}/element/{id}/displayed"},
	GetElementLocation:           {http.MethodGet, "/session/{sessionId}/element/{id}/location"},
	GetElementLocationInView:     {http.MethodGet, "/session/{sessionId}/element/{id}/location_in_view"},
	GetElementSize:               {http.MethodGet, "/session/{sessionId}/element/{id}/size"},
	GetElementRect:               {http.MethodGet, "/session/{sessionId}/element/{id}/rect"},
	GetElementAttribute:          {http.MethodGet, "/session/{sessionId}/element/{id}/attribute/{name}"},
	GetElementProperty:           {http.MethodGet, "/session/{sessionId}/element/{id}/property/{name}"},
	GetElementValueOfCSSProperty: {http.MethodGet, "/session/{sessionId}/element/{id}/css/{propertyName}"},
	GetElementAriaRole:           {http.MethodGet, "/session/{sessionId}/element/{id}/computedrole"},
	GetElementAriaLabel:          {http.MethodGet, "/session/{sessionId}/element/{id}/computedlabel"},

	GetAllCookies:    {http.MethodGet, "/session/{sessionId}/cookie"},
	GetCookie:        {http.MethodGet, "/session/{sessionId}/cookie/{name}"},
	AddCookie:        {http.MethodPost, "/session/{sessionId}/cookie"},
	DeleteCookie:     {http.MethodDelete, "/session/{sessionId}/cookie/{name}"},
	DeleteAllCookies: {http.MethodDelete, "/session/{sessionId}/cookie"},

	SwitchToFrame:       {http.MethodPost, "/session/{sessionId}/frame"},
	SwitchToParentFrame: {http.MethodPost, "/session/{sessionId}/frame/parent"},
	SwitchToWindow:      {http.MethodPost, "/session/{sessionId}/window"},
	NewWindow:           {http.MethodPost, "/session/{sessionId}/window/new"},
	Close:               {http.MethodDelete, "/session/{sessionId}/window"},

	GetCurrentWindowHandle:    {http.MethodGet, "/session/{sessionId}/window_handle"},
	W3CGetCurrentWindowHandle: {http.MethodGet, "/session/{sessionId}/window"},
	GetWindowHandles:          {http.MethodGet, "/session/{sessionId}/window_handles"},
	W3CGetWindowHandles:       {http.MethodGet, "/session/{sessionId}/window/handles"},
	SetWindowSize:             {http.MethodPost, "/session/{sessionId}/window/{windowHandle}/size"},
	GetWindowSize:             {http.MethodGet, "/session/{sessionId}/window/{windowHandle}/size"},
	SetWindowPosition:         {http.MethodPost, "/session/{sessionId}/window/{windowHandle}/position"},
	GetWindowPosition:         {http.MethodGet, "/session/{sessionId}/window/{windowHandle}/position"},
	SetWindowRect:             {http.MethodPost, "/session/{sessionId}/window/rect"},
	GetWindowRect:             {http.MethodGet, "/session/{sessionId}/window/rect"},
	MaximizeWindow:            {http.MethodPost, "/session/{sessionId}/window/{windowHandle}/maximize"},
	W3CMaximizeWindow:         {http.MethodPost, "/session/{sessionId}/window/maximize"},
	MinimizeWindow:            {http.MethodPost, "/session/{sessionId}/window/minimize"},
	FullscreenWindow:          {http.MethodPost, "/session/{sessionId}/window/fullscreen"},

	ImplicitWait:     {http.MethodPost, "/session/{sessionId}/timeouts/implicit_wait"},
	SetScriptTimeout: {http.MethodPost, "/session/{sessionId}/timeouts/async_script"},
	SetTimeouts:      {http.MethodPost, "/session/{sessionId}/timeouts"},
	GetTimeouts:      {http.MethodGet, "/session/{sessionId}/timeouts"},

	DismissAlert:        {http.MethodPost, "/session/{sessionId}/dismiss_alert"},
	W3CDismissAlert:     {http.MethodPost, "/session/{sessionId}/alert/dismiss"},
	AcceptAlert:         {http.MethodPost, "/session/{sessionId}/accept_alert"},
	W3CAcceptAlert:      {http.MethodPost, "/session/{sessionId}/alert/accept"},
	SetAlertValue:       {http.MethodPost, "/session/{sessionId}/alert_text"},
	W3CSetAlertValue:    {http.MethodPost, "/session/{sessionId}/alert/text"},
	GetAlertText:        {http.MethodGet, "/session/{sessionId}/alert_text"},
	W3CGetAlertText:     {http.MethodGet, "/session/{sessionId}/alert/text"},
	SetAlertCredentials: {http.MethodPost, "/session/{sessionId}/alert/credentials"},

	W3CActions:      {http.MethodPost, "/session/{sessionId}/actions"},
	W3CClearActions: {http.MethodDelete, "/session/{sessionId}/actions"},

	GetScreenOrientation: {http.MethodGet, "/session/{sessionId}/orientation"},
	SetScreenOrientation: {http.MethodPost, "/session/{sessionId}/orientation"},
	GetNetworkConnection: {http.MethodGet, "/session/{sessionId}/network_connection"},
	SetNetworkConnection: {http.MethodPost, "/session/{sessionId}/network_connection"},
	CurrentContextHandle: {http.MethodGet, "/session/{sessionId}/context"},
	ContextHandles:       {http.MethodGet, "/session/{sessionId}/contexts"},
	SwitchToContext:      {http.MethodPost, "/session/{sessionId}/context"},

	GetLog:               {http.MethodPost, "/session/{sessionId}/log"},
	GetAvailableLogTypes: {http.MethodGet, "/session/{sessionId}/log/types"},
}

var base = New(baseCommands)

// Base returns the shared catalog of standard W3C and legacy commands.
// Catalogs are immutable, so the same instance is returned on every call.
func Base() *Catalog {
	return base
}
