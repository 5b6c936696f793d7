package webdriver

// getAttributeScript resolves an attribute the way legacy drivers did: the
// property when it holds a primitive, boolean attributes as "true" or null,
// and the raw attribute otherwise.
const getAttributeScript = `return (function(e, n) {
  var l = String(n).toLowerCase();
  if (l === 'style') { return e.style.cssText ? e.style.cssText : null; }
  if (l === 'class') { n = 'className'; }
  if (l === 'readonly') { n = 'readOnly'; }
  if (l === 'selected' || l === 'checked') {
    return e[l] ? 'true' : null;
  }
  if ((l === 'href' || l === 'src') && e.hasAttribute(l)) {
    var u = e[l];
    if (u != null) { return String(u); }
  }
  var bools = ['async', 'autofocus', 'autoplay', 'checked', 'compact', 'complete',
    'controls', 'declare', 'defaultchecked', 'defaultselected', 'defer', 'disabled',
    'draggable', 'ended', 'formnovalidate', 'hidden', 'indeterminate',
    'iscontenteditable', 'ismap', 'itemscope', 'loop', 'multiple', 'muted', 'nohref',
    'noresize', 'noshade', 'novalidate', 'nowrap', 'open', 'paused', 'pubdate',
    'readonly', 'required', 'reversed', 'scoped', 'seamless', 'seeking', 'selected',
    'spellcheck', 'truespeed', 'willvalidate'];
  if (bools.indexOf(l) >= 0) {
    return (e.hasAttribute(l) || e[n] === true) ? 'true' : null;
  }
  var p = e[n];
  if (p != null && typeof p !== 'object' && typeof p !== 'function') { return String(p); }
  var a = e.getAttribute(n);
  return a == null ? null : String(a);
}).apply(null, arguments);`

// isDisplayedScript approximates user visibility: connected, not hidden by
// display or visibility on any ancestor, and occupying some area.
const isDisplayedScript = `return (function(e) {
  if (!e || !e.isConnected) { return false; }
  var tag = e.tagName.toLowerCase();
  if (tag === 'option' || tag === 'optgroup') {
    var sel = e.closest('select');
    return sel ? arguments.callee(sel) : false;
  }
  if (tag === 'input' && String(e.type).toLowerCase() === 'hidden') { return false; }
  for (var n = e; n && n.nodeType === 1; n = n.parentElement || (n.getRootNode().host || null)) {
    var s = window.getComputedStyle(n);
    if (s.display === 'none') { return false; }
  }
  var cs = window.getComputedStyle(e);
  if (cs.visibility === 'hidden' || cs.visibility === 'collapse') { return false; }
  if (parseFloat(cs.opacity) === 0) { return false; }
  var r = e.getBoundingClientRect();
  if (r.width > 0 && r.height > 0) { return true; }
  for (var c = e.firstElementChild; c; c = c.nextElementSibling) {
    var cr = c.getBoundingClientRect();
    if (cr.width > 0 && cr.height > 0) { return true; }
  }
  return false;
}).apply(null, arguments);`

const submitScript = "var e = arguments[0].ownerDocument.createEvent('Event');" +
	"e.initEvent('submit', true, true);" +
	"if (arguments[0].dispatchEvent(e)) { arguments[0].submit() }"

const scrollIntoViewScript = "arguments[0].scrollIntoView(true); return arguments[0].getBoundingClientRect()"

const propertyFallbackScript = "return arguments[0][arguments[1]]"

const windowNameScript = "return window.name"
