package browser

import (
	"encoding/json"
	"fmt"
)

// Both drivers run these scripts with an evaluate call, so that queries and form submission
// behave the same on chromedp and Playwright.

const findNodesJS = `function(sel, xpath) {
	if (!xpath) {
		return Array.from(document.querySelectorAll(sel));
	}
	const r = document.evaluate(sel, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	const nodes = [];
	for (let i = 0; i < r.snapshotLength; i++) {
		nodes.push(r.snapshotItem(i));
	}
	return nodes;
}`

const queryJS = `(function(sel, xpath) {
	const find = %s;
	return find(sel, xpath).map(e => ({
		text: (e.textContent || '').trim(),
		classes: Array.from(e.classList || []),
		value: e.value === undefined || e.value === null ? '' : String(e.value),
		disabled: !!e.disabled,
		visible: !!(e.offsetWidth || e.offsetHeight || (e.getClientRects && e.getClientRects().length))
	}));
})(%s, %t)`

// requestSubmit fires the form's submit event, which script-driven forms listen for;
// HTMLFormElement.submit() would bypass their handlers and reload the page.
const submitJS = `(function(sel, xpath) {
	const find = %s;
	const nodes = find(sel, xpath);
	if (nodes.length === 0) {
		throw new Error('no element matches ' + sel);
	}
	const form = nodes[0].tagName === 'FORM' ? nodes[0] : nodes[0].closest('form');
	if (!form) {
		throw new Error('element matching ' + sel + ' is not inside a form');
	}
	form.requestSubmit();
	return true;
})(%s, %t)`

func queryScript(selector string) string {
	return fmt.Sprintf(queryJS, findNodesJS, jsString(selector), isXPath(selector))
}

func submitScript(selector string) string {
	return fmt.Sprintf(submitJS, findNodesJS, jsString(selector), isXPath(selector))
}

func jsString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
